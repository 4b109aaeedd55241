package event

import (
	"testing"

	"github.com/colabio/crowdfund/src/ledger"
	"github.com/colabio/crowdfund/src/program"
	"github.com/colabio/crowdfund/src/runtime"

	"github.com/hamba/avro"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestEventTestSuite(t *testing.T) {
	suite.Run(t, new(EventTestSuite))
}

type EventTestSuite struct {
	suite.Suite
}

func (s *EventTestSuite) receipt(ix program.Instruction, project *program.Project) *ledger.Receipt {
	data, err := program.Pack(ix)
	s.Require().NoError(err)

	account := &runtime.AccountInfo{Data: make([]byte, program.ProjectSpace)}
	s.Require().NoError(program.SaveProject(account, project))

	return &ledger.Receipt{
		Id:        "tx-1",
		Slot:      12,
		Timestamp: 1_700_000_000,
		Accounts: []runtime.AccountMeta{
			{Pubkey: runtime.Pubkey{1}, IsSigner: true, IsWritable: true},
			{Pubkey: runtime.Pubkey{2}, IsWritable: true},
		},
		Data:         data,
		PostAccounts: []ledger.AccountState{{Key: runtime.Pubkey{2}, Account: ledger.Account{Data: account.Data}}},
	}
}

func (s *EventTestSuite) TestRelease() {
	project := &program.Project{
		Creator:      runtime.Pubkey{1},
		GoalAmount:   1000,
		RaisedAmount: 800,
		Status:       program.StatusActive,
		Milestones:   []program.Milestone{{Name: "a", Amount: 100}, {Name: "b", Amount: 250, Completed: true}},
	}

	event, err := NewProjectEvent(s.receipt(program.ReleaseFunds{MilestoneIndex: 1}, project))
	require.NoError(s.T(), err)
	require.Equal(s.T(), &ProjectEvent{
		TxId:           "tx-1",
		Slot:           12,
		Timestamp:      1_700_000_000,
		Instruction:    "release_funds",
		Project:        runtime.Pubkey{2}.String(),
		Signer:         runtime.Pubkey{1}.String(),
		Status:         "active",
		GoalAmount:     1000,
		RaisedAmount:   800,
		MilestoneIndex: 1,
		Amount:         250,
	}, event)

	data, err := event.MarshalBinary()
	require.NoError(s.T(), err)

	decoded := new(ProjectEvent)
	require.NoError(s.T(), decoded.UnmarshalBinary(data))
	require.Equal(s.T(), event, decoded)
}

func (s *EventTestSuite) TestFullRangeAmounts() {
	const limit = ^uint64(0)
	project := &program.Project{
		GoalAmount:   limit,
		RaisedAmount: limit - 1,
		Status:       program.StatusActive,
	}

	event, err := NewProjectEvent(s.receipt(program.Contribute{Amount: limit}, project))
	require.NoError(s.T(), err)
	event.Slot = limit

	data, err := event.MarshalBinary()
	require.NoError(s.T(), err)

	decoded := new(ProjectEvent)
	require.NoError(s.T(), decoded.UnmarshalBinary(data))
	require.Equal(s.T(), limit, decoded.GoalAmount)
	require.Equal(s.T(), limit-1, decoded.RaisedAmount)
	require.Equal(s.T(), limit, decoded.Amount)
	require.Equal(s.T(), limit, decoded.Slot)
}

func (s *EventTestSuite) TestInvalidNumber() {
	data, err := avro.Marshal(projectEventSchema, &projectEventRecord{
		Slot:         "1",
		GoalAmount:   "-5",
		RaisedAmount: "0",
		Amount:       "0",
	})
	require.NoError(s.T(), err)

	err = new(ProjectEvent).UnmarshalBinary(data)
	require.ErrorIs(s.T(), err, ErrInvalidNumber)
}

func (s *EventTestSuite) TestContribute() {
	event, err := NewProjectEvent(s.receipt(program.Contribute{Amount: 42}, &program.Project{Status: program.StatusActive}))
	require.NoError(s.T(), err)
	require.Equal(s.T(), "contribute", event.Instruction)
	require.Equal(s.T(), uint64(42), event.Amount)
	require.Equal(s.T(), int32(-1), event.MilestoneIndex)
}

func (s *EventTestSuite) TestFailedReceipt() {
	receipt := s.receipt(program.ReleaseFunds{MilestoneIndex: 3}, &program.Project{})
	receipt.Err = program.ErrNotOwner
	receipt.Error = program.ErrNotOwner.Error()
	receipt.PostAccounts = nil

	event, err := NewProjectEvent(receipt)
	require.NoError(s.T(), err)
	require.Equal(s.T(), "release_funds", event.Instruction)
	require.Equal(s.T(), program.ErrNotOwner.Error(), event.Error)
	require.Equal(s.T(), int32(3), event.MilestoneIndex)
	require.Zero(s.T(), event.Amount)
	require.Empty(s.T(), event.Status)
}

func (s *EventTestSuite) TestFailedGarbage() {
	receipt := s.receipt(program.CancelProject{}, &program.Project{})
	receipt.Data = []byte{99}
	receipt.Err = program.ErrUnknownInstruction

	event, err := NewProjectEvent(receipt)
	require.NoError(s.T(), err)
	require.Nil(s.T(), event)
}

func (s *EventTestSuite) TestMissingProject() {
	receipt := s.receipt(program.CancelProject{}, &program.Project{})
	receipt.PostAccounts = nil

	event, err := NewProjectEvent(receipt)
	require.NoError(s.T(), err)
	require.Nil(s.T(), event)
}
