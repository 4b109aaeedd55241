package model

// Side records are saved once per transaction, so repeated
// attestations stay visible even though the ledger overwrites the account.

type Contribution struct {
	TxId string `gorm:"primaryKey"`

	// Record account
	Address string

	Contributor string
	Project     string
	Amount      uint64
	Timestamp   uint64
	Slot        uint64
}

func (Contribution) TableName() string {
	return "contributions"
}

type Validation struct {
	TxId    string `gorm:"primaryKey"`
	Address string

	Validator      string
	Project        string
	MilestoneIndex uint8
	Timestamp      uint64
	Slot           uint64
}

func (Validation) TableName() string {
	return "validations"
}

type Vote struct {
	TxId    string `gorm:"primaryKey"`
	Address string

	Voter     string
	Project   string
	Approve   bool
	Timestamp uint64
	Slot      uint64
}

func (Vote) TableName() string {
	return "votes"
}
