package program

import (
	"testing"

	"github.com/colabio/crowdfund/src/runtime"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestStateTestSuite(t *testing.T) {
	suite.Run(t, new(StateTestSuite))
}

type StateTestSuite struct {
	suite.Suite
}

func (s *StateTestSuite) TestProjectLayout() {
	project := Project{
		Creator:      runtime.Pubkey{7},
		Title:        "t",
		Description:  "",
		GoalAmount:   1,
		RaisedAmount: 2,
		StartTime:    3,
		EndTime:      4,
		Milestones:   []Milestone{{Name: "m", Amount: 5, Completed: true, Validations: 3}},
		Status:       StatusActive,
		ApproveVotes: 10,
		RejectVotes:  1,
	}
	account := &runtime.AccountInfo{Data: make([]byte, ProjectSpace)}
	require.NoError(s.T(), store(account, project))

	expected := append([]byte{7}, make([]byte, 31)...)
	expected = append(expected, 1, 0, 0, 0, 't')
	expected = append(expected, 0, 0, 0, 0)
	expected = append(expected, 1, 0, 0, 0, 0, 0, 0, 0)
	expected = append(expected, 2, 0, 0, 0, 0, 0, 0, 0)
	expected = append(expected, 3, 0, 0, 0, 0, 0, 0, 0)
	expected = append(expected, 4, 0, 0, 0, 0, 0, 0, 0)
	expected = append(expected, 1, 0, 0, 0)
	expected = append(expected, 1, 0, 0, 0, 'm', 0, 0, 0, 0)
	expected = append(expected, 5, 0, 0, 0, 0, 0, 0, 0, 1, 3, 0, 0, 0)
	expected = append(expected, 1, 10, 0, 0, 0, 1, 0, 0, 0)
	require.Equal(s.T(), expected, account.Data[:len(expected)])
	require.Equal(s.T(), make([]byte, ProjectSpace-len(expected)), account.Data[len(expected):])

	decoded, err := DecodeProject(account.Data)
	require.NoError(s.T(), err)
	require.Equal(s.T(), project, *decoded)
}

func (s *StateTestSuite) TestStoreShrinks() {
	account := &runtime.AccountInfo{Data: make([]byte, RecordSpace)}
	require.NoError(s.T(), store(account, VoteRecord{Voter: runtime.Pubkey{1}, Approve: true, Timestamp: 9}))

	decoded, err := DecodeVote(account.Data)
	require.NoError(s.T(), err)
	require.Equal(s.T(), runtime.Pubkey{1}, decoded.Voter)
	require.True(s.T(), decoded.Approve)
	require.Equal(s.T(), uint64(9), decoded.Timestamp)
}

func (s *StateTestSuite) TestStoreTooSmall() {
	account := &runtime.AccountInfo{Data: make([]byte, 10)}
	err := store(account, ContributionRecord{})
	require.ErrorIs(s.T(), err, runtime.ErrAccountDataTooSmall)
}

func (s *StateTestSuite) TestDecodeInvalid() {
	_, err := DecodeProject(nil)
	require.ErrorIs(s.T(), err, ErrInvalidAccountData)

	_, err = DecodeProject(make([]byte, 20))
	require.ErrorIs(s.T(), err, ErrInvalidAccountData)

	_, err = DecodeContribution([]byte{1, 2, 3})
	require.ErrorIs(s.T(), err, ErrInvalidAccountData)

	_, err = DecodeValidation(make([]byte, 64))
	require.ErrorIs(s.T(), err, ErrInvalidAccountData)

	// Bool must be 0 or 1
	data := make([]byte, RecordSpace)
	data[64] = 2
	_, err = DecodeVote(data)
	require.ErrorIs(s.T(), err, ErrInvalidAccountData)
}
