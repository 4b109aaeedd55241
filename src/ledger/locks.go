package ledger

import (
	"encoding/binary"
	"slices"
	"sync"

	"github.com/colabio/crowdfund/src/runtime"
)

const lockStripes = 256

// Serializes writers of the same account. Keys map onto a fixed set of stripes,
// stripes are always taken in ascending order.
type keyLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (self *keyLocks) lock(keys []runtime.Pubkey) (unlock func()) {
	indexes := make([]int, 0, len(keys))
	for _, key := range keys {
		indexes = append(indexes, int(binary.LittleEndian.Uint32(key[:4])%lockStripes))
	}
	slices.Sort(indexes)
	indexes = slices.Compact(indexes)

	for _, i := range indexes {
		self.stripes[i].Lock()
	}

	return func() {
		for j := len(indexes) - 1; j >= 0; j-- {
			self.stripes[indexes[j]].Unlock()
		}
	}
}
