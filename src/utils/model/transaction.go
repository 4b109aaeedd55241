package model

// Every executed transaction, successful or not
type Transaction struct {
	Id          string `gorm:"primaryKey"`
	Slot        uint64
	Instruction string

	// First signer
	Signer string

	// Project account the instruction was addressed to
	Project string

	// Empty when the transaction succeeded
	Error string

	Timestamp int64
}

func (Transaction) TableName() string {
	return "transactions"
}
