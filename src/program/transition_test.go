package program

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestTransitionTestSuite(t *testing.T) {
	suite.Run(t, new(TransitionTestSuite))
}

type TransitionTestSuite struct {
	suite.Suite
}

func (s *TransitionTestSuite) active(milestones ...Milestone) *Project {
	return &Project{
		Status:     StatusActive,
		StartTime:  100,
		EndTime:    200,
		Milestones: milestones,
	}
}

func (s *TransitionTestSuite) TestContribute() {
	project := s.active()
	require.NoError(s.T(), project.Contribute(10, 100))
	require.NoError(s.T(), project.Contribute(5, 200))
	require.Equal(s.T(), uint64(15), project.RaisedAmount)

	require.ErrorIs(s.T(), project.Contribute(5, 201), ErrInvalidState)
	require.Equal(s.T(), uint64(15), project.RaisedAmount)

	require.ErrorIs(s.T(), project.Contribute(^uint64(0), 150), ErrArithmeticOverflow)

	for _, status := range []ProjectStatus{StatusPending, StatusCompleted, StatusCancelled} {
		project.Status = status
		require.ErrorIs(s.T(), project.Contribute(1, 150), ErrInvalidState, status.String())
	}
}

func (s *TransitionTestSuite) TestValidateQuorum() {
	project := s.active(Milestone{Name: "a", Amount: 1})

	for i := 1; i < ValidationQuorum; i++ {
		reached, err := project.Validate(0)
		require.NoError(s.T(), err)
		require.False(s.T(), reached)
		require.False(s.T(), project.Milestones[0].Completed)
	}

	reached, err := project.Validate(0)
	require.NoError(s.T(), err)
	require.True(s.T(), reached)
	require.True(s.T(), project.Milestones[0].Completed)

	// Counting continues, completion is reported once
	reached, err = project.Validate(0)
	require.NoError(s.T(), err)
	require.False(s.T(), reached)
	require.Equal(s.T(), uint32(ValidationQuorum+1), project.Milestones[0].Validations)

	_, err = project.Validate(1)
	require.ErrorIs(s.T(), err, ErrIndexOutOfRange)

	project.Status = StatusPending
	_, err = project.Validate(0)
	require.ErrorIs(s.T(), err, ErrInvalidState)
}

func (s *TransitionTestSuite) TestRelease() {
	project := s.active(Milestone{Amount: 600, Completed: true}, Milestone{Amount: 400})

	amount, err := project.Release(0)
	require.NoError(s.T(), err)
	require.Equal(s.T(), uint64(600), amount)
	require.Equal(s.T(), StatusActive, project.Status)

	_, err = project.Release(1)
	require.ErrorIs(s.T(), err, ErrMilestoneNotComplete)

	_, err = project.Release(2)
	require.ErrorIs(s.T(), err, ErrIndexOutOfRange)

	project.Milestones[1].Completed = true
	amount, err = project.Release(1)
	require.NoError(s.T(), err)
	require.Equal(s.T(), uint64(400), amount)
	require.Equal(s.T(), StatusCompleted, project.Status)

	_, err = project.Release(1)
	require.ErrorIs(s.T(), err, ErrInvalidState)
}

func (s *TransitionTestSuite) TestCancel() {
	for _, status := range []ProjectStatus{StatusPending, StatusActive} {
		project := &Project{Status: status}
		require.NoError(s.T(), project.Cancel())
		require.Equal(s.T(), StatusCancelled, project.Status)
	}

	for _, status := range []ProjectStatus{StatusCompleted, StatusCancelled} {
		project := &Project{Status: status}
		require.ErrorIs(s.T(), project.Cancel(), ErrInvalidState)
		require.Equal(s.T(), status, project.Status)
	}
}

func (s *TransitionTestSuite) TestVoteActivates() {
	project := &Project{Status: StatusPending}
	for i := 0; i < ActivationQuorum-1; i++ {
		require.NoError(s.T(), project.Vote(true))
		require.NoError(s.T(), project.Vote(false))
	}
	require.Equal(s.T(), StatusPending, project.Status)

	require.NoError(s.T(), project.Vote(true))
	require.Equal(s.T(), StatusActive, project.Status)
	require.Equal(s.T(), uint32(ActivationQuorum), project.ApproveVotes)

	require.ErrorIs(s.T(), project.Vote(true), ErrInvalidState)
}

func (s *TransitionTestSuite) TestVoteRejects() {
	project := &Project{Status: StatusPending}
	for i := 0; i < ActivationQuorum; i++ {
		require.NoError(s.T(), project.Vote(false))
	}
	require.Equal(s.T(), StatusCancelled, project.Status)
	require.Equal(s.T(), uint32(ActivationQuorum), project.RejectVotes)
	require.Zero(s.T(), project.ApproveVotes)
}

func (s *TransitionTestSuite) TestApproveWinsTie() {
	project := &Project{Status: StatusPending, ApproveVotes: ActivationQuorum - 1, RejectVotes: ActivationQuorum + 3}
	require.NoError(s.T(), project.Vote(true))
	require.Equal(s.T(), StatusActive, project.Status)
}
