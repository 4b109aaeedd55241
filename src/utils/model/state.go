package model

import "time"

type State struct {
	// Component that saved its progress
	Name SyncedComponent `gorm:"primaryKey"`

	// Slot of the last fully processed receipt
	LastSlot uint64

	UpdatedAt time.Time
}

func (State) TableName() string {
	return "sync_state"
}
