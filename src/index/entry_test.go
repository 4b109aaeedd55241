package index

import (
	"testing"

	"github.com/colabio/crowdfund/src/ledger"
	"github.com/colabio/crowdfund/src/program"
	"github.com/colabio/crowdfund/src/runtime"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestEntryTestSuite(t *testing.T) {
	suite.Run(t, new(EntryTestSuite))
}

type EntryTestSuite struct {
	suite.Suite
}

func (s *EntryTestSuite) receipt(ix program.Instruction) *ledger.Receipt {
	data, err := program.Pack(ix)
	s.Require().NoError(err)
	return &ledger.Receipt{
		Id:   "tx",
		Slot: 7,
		Accounts: []runtime.AccountMeta{
			{Pubkey: runtime.Pubkey{1}, IsSigner: true, IsWritable: true},
			{Pubkey: runtime.Pubkey{2}, IsWritable: true},
			{Pubkey: runtime.Pubkey{3}, IsSigner: true, IsWritable: true},
		},
		Data: data,
	}
}

func (s *EntryTestSuite) TestGarbageFailedTransaction() {
	receipt := &ledger.Receipt{
		Id:       "tx",
		Accounts: []runtime.AccountMeta{{Pubkey: runtime.Pubkey{1}, IsSigner: true}},
		Data:     []byte{42},
		Err:      program.ErrUnknownInstruction,
		Error:    program.ErrUnknownInstruction.Error(),
	}

	entry, err := NewEntry(receipt)
	require.NoError(s.T(), err)
	require.Equal(s.T(), "unknown", entry.Transaction.Instruction)
	require.Equal(s.T(), runtime.Pubkey{1}.String(), entry.Transaction.Signer)
	require.Empty(s.T(), entry.Transaction.Project)
	require.Nil(s.T(), entry.Project)
}

func (s *EntryTestSuite) TestMissingProjectState() {
	entry, err := NewEntry(s.receipt(program.CancelProject{}))
	require.ErrorIs(s.T(), err, ErrMissingProjectState)
	require.Equal(s.T(), "cancel_project", entry.Transaction.Instruction)
	require.Equal(s.T(), runtime.Pubkey{2}.String(), entry.Transaction.Project)
}

func (s *EntryTestSuite) TestUndecodableProject() {
	receipt := s.receipt(program.CancelProject{})
	receipt.PostAccounts = []ledger.AccountState{{Key: runtime.Pubkey{2}, Account: ledger.Account{Data: []byte{1, 2, 3}}}}

	_, err := NewEntry(receipt)
	require.ErrorIs(s.T(), err, ErrDecodeFailed)
}

func (s *EntryTestSuite) TestMissingRecordState() {
	receipt := s.receipt(program.Vote{Approve: true})

	project := &runtime.AccountInfo{Data: make([]byte, program.ProjectSpace)}
	s.Require().NoError(program.SaveProject(project, &program.Project{Creator: runtime.Pubkey{1}, Title: "t"}))
	receipt.PostAccounts = []ledger.AccountState{{Key: runtime.Pubkey{2}, Account: ledger.Account{Data: project.Data}}}

	entry, err := NewEntry(receipt)
	require.ErrorIs(s.T(), err, ErrMissingRecordState)
	require.NotNil(s.T(), entry.Project)
	require.Equal(s.T(), "t", entry.Project.Title)
	require.Equal(s.T(), uint64(7), entry.Project.Slot)
	require.Empty(s.T(), entry.Project.Milestones)
}
