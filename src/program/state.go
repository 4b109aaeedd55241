package program

import (
	"fmt"

	"github.com/colabio/crowdfund/src/runtime"
	"github.com/near/borsh-go"
)

const (
	// Validations needed to mark a milestone completed
	ValidationQuorum = 3

	// Approve (or reject) votes needed to activate (or cancel) a pending project
	ActivationQuorum = 10

	// Bytes allocated for a project account
	ProjectSpace = 1000

	// Bytes allocated for a contribution, validation or vote account
	RecordSpace = 100
)

type ProjectStatus uint8

const (
	StatusPending ProjectStatus = iota
	StatusActive
	StatusCompleted
	StatusCancelled
)

func (self ProjectStatus) String() string {
	switch self {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(self))
	}
}

func (self ProjectStatus) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

type Milestone struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Amount      uint64 `json:"amount"`
	Completed   bool   `json:"completed"`
	Validations uint32 `json:"validations"`
}

// Project account data. Field order is the on-chain layout.
type Project struct {
	Creator      runtime.Pubkey `json:"creator"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	GoalAmount   uint64         `json:"goal_amount"`
	RaisedAmount uint64         `json:"raised_amount"`
	StartTime    uint64         `json:"start_time"`
	EndTime      uint64         `json:"end_time"`
	Milestones   []Milestone    `json:"milestones"`
	Status       ProjectStatus  `json:"status"`
	ApproveVotes uint32         `json:"approve_votes"`
	RejectVotes  uint32         `json:"reject_votes"`
}

type ContributionRecord struct {
	Contributor runtime.Pubkey `json:"contributor"`
	Project     runtime.Pubkey `json:"project"`
	Amount      uint64         `json:"amount"`
	Timestamp   uint64         `json:"timestamp"`
}

type ValidationRecord struct {
	Validator      runtime.Pubkey `json:"validator"`
	Project        runtime.Pubkey `json:"project"`
	MilestoneIndex uint8          `json:"milestone_index"`
	Timestamp      uint64         `json:"timestamp"`
}

type VoteRecord struct {
	Voter     runtime.Pubkey `json:"voter"`
	Project   runtime.Pubkey `json:"project"`
	Approve   bool           `json:"approve"`
	Timestamp uint64         `json:"timestamp"`
}

func DecodeProject(data []byte) (out *Project, err error) {
	out = new(Project)
	err = decode(data, out)
	return
}

func DecodeContribution(data []byte) (out *ContributionRecord, err error) {
	out = new(ContributionRecord)
	err = decode(data, out)
	return
}

func DecodeValidation(data []byte) (out *ValidationRecord, err error) {
	out = new(ValidationRecord)
	err = decode(data, out)
	return
}

func DecodeVote(data []byte) (out *VoteRecord, err error) {
	out = new(VoteRecord)
	err = decode(data, out)
	return
}

func SaveProject(account *runtime.AccountInfo, project *Project) error {
	return store(account, *project)
}

func decode(data []byte, v any) (err error) {
	if len(data) == 0 {
		return ErrInvalidAccountData
	}

	// Decoder panics on some truncated inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidAccountData, r)
		}
	}()

	err = borsh.Deserialize(v, data)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrInvalidAccountData, err)
	}
	return
}

// Serializes the record into the account's data, zeroing what's left of the allocation.
// Pass records by value, pointers are encoded as options.
func store(account *runtime.AccountInfo, v any) (err error) {
	buf, err := borsh.Serialize(v)
	if err != nil {
		return
	}
	if len(buf) > len(account.Data) {
		return fmt.Errorf("%w: record needs %d bytes, account has %d", runtime.ErrAccountDataTooSmall, len(buf), len(account.Data))
	}

	n := copy(account.Data, buf)
	clear(account.Data[n:])
	return
}
