package model

import (
	"time"
)

const TableProject = "projects"

// Latest known state of a project account
type Project struct {
	// Base58 address of the project account
	Address string `gorm:"primaryKey"`

	// Base58 creator's address
	Creator string

	Title       string
	Description string

	// Lamports
	GoalAmount   uint64
	RaisedAmount uint64

	// Unix timestamps
	StartTime uint64
	EndTime   uint64

	// pending, active, completed, cancelled
	Status string

	ApproveVotes uint32
	RejectVotes  uint32

	// Slot of the transaction that produced this state
	Slot uint64

	UpdatedAt time.Time

	Milestones []Milestone `gorm:"foreignKey:ProjectAddress;references:Address"`
}

func (Project) TableName() string {
	return TableProject
}

type Milestone struct {
	ProjectAddress string `gorm:"primaryKey"`

	// Index within the project
	Position uint8 `gorm:"primaryKey"`

	Name        string
	Description string
	Amount      uint64
	Completed   bool
	Validations uint32
}

func (Milestone) TableName() string {
	return "milestones"
}
