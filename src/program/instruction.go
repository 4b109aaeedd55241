package program

type InstructionTag uint8

const (
	TagInitializeProject InstructionTag = iota
	TagContribute
	TagValidateMilestone
	TagReleaseFunds
	TagCancelProject
	TagVote
)

func (self InstructionTag) String() string {
	switch self {
	case TagInitializeProject:
		return "initialize_project"
	case TagContribute:
		return "contribute"
	case TagValidateMilestone:
		return "validate_milestone"
	case TagReleaseFunds:
		return "release_funds"
	case TagCancelProject:
		return "cancel_project"
	case TagVote:
		return "vote"
	default:
		return "unknown"
	}
}

// One of the six instructions understood by the program
type Instruction interface {
	Tag() InstructionTag
}

// Registers a new project.
//
// Accounts expected:
//  0. `[signer]` Project creator
//  1. `[writable]` Project account, must be uninitialized
//  2. `[]` Rent sysvar
//  3. `[]` System program
type InitializeProject struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	GoalAmount  uint64      `json:"goal_amount"`
	Duration    uint64      `json:"duration"`
	Milestones  []Milestone `json:"milestones"`
}

// Sends lamports to the project's escrow.
//
// Accounts expected:
//  0. `[signer]` Contributor
//  1. `[writable]` Project account
//  2. `[writable]` Contribution account
//  3. `[]` System program
type Contribute struct {
	Amount uint64 `json:"amount"`
}

// Attests completion of a milestone.
//
// Accounts expected:
//  0. `[signer]` Validator
//  1. `[writable]` Project account
//  2. `[writable]` Validation account
//  3. `[]` System program
type ValidateMilestone struct {
	MilestoneIndex uint8 `json:"milestone_index"`
}

// Pays a completed milestone out to the creator.
//
// Accounts expected:
//  0. `[signer]` Project creator
//  1. `[writable]` Project account
//  2. `[]` System program
type ReleaseFunds struct {
	MilestoneIndex uint8 `json:"milestone_index"`
}

// Cancels a pending or active project. Contributions stay in escrow.
//
// Accounts expected:
//  0. `[signer]` Project creator
//  1. `[writable]` Project account
//  2. `[]` System program
type CancelProject struct{}

// Approves or rejects activation of a pending project.
//
// Accounts expected:
//  0. `[signer]` Voter
//  1. `[writable]` Project account
//  2. `[writable]` Vote account
//  3. `[]` System program
type Vote struct {
	Approve bool `json:"approve"`
}

func (InitializeProject) Tag() InstructionTag { return TagInitializeProject }
func (Contribute) Tag() InstructionTag        { return TagContribute }
func (ValidateMilestone) Tag() InstructionTag { return TagValidateMilestone }
func (ReleaseFunds) Tag() InstructionTag      { return TagReleaseFunds }
func (CancelProject) Tag() InstructionTag     { return TagCancelProject }
func (Vote) Tag() InstructionTag              { return TagVote }
