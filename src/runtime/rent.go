package runtime

// Bytes every account is charged for on top of its data
const ACCOUNT_STORAGE_OVERHEAD = 128

type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
}

func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: 3480,
		ExemptionThreshold:  2.0,
	}
}

// Minimum balance that makes an account of the given data size rent exempt
func (self Rent) MinimumBalance(space uint64) uint64 {
	return uint64(float64((ACCOUNT_STORAGE_OVERHEAD+space)*self.LamportsPerByteYear) * self.ExemptionThreshold)
}
