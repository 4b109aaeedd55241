package program

import (
	"testing"

	"github.com/colabio/crowdfund/src/runtime"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestAuthTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}

type AuthTestSuite struct {
	suite.Suite
	creator runtime.Pubkey
	project *Project
}

func (s *AuthTestSuite) SetupTest() {
	s.creator = runtime.Pubkey{1}
	s.project = &Project{Creator: s.creator}
}

func (s *AuthTestSuite) TestAnySigner() {
	for _, tag := range []InstructionTag{TagInitializeProject, TagContribute, TagValidateMilestone, TagVote} {
		err := Authorize(tag, &runtime.AccountInfo{Key: runtime.Pubkey{9}, IsSigner: true}, s.project)
		require.NoError(s.T(), err, tag.String())

		err = Authorize(tag, &runtime.AccountInfo{Key: runtime.Pubkey{9}}, s.project)
		require.ErrorIs(s.T(), err, ErrMissingSignature, tag.String())
	}
}

func (s *AuthTestSuite) TestCreatorOnly() {
	for _, tag := range []InstructionTag{TagReleaseFunds, TagCancelProject} {
		err := Authorize(tag, &runtime.AccountInfo{Key: s.creator, IsSigner: true}, s.project)
		require.NoError(s.T(), err, tag.String())

		err = Authorize(tag, &runtime.AccountInfo{Key: s.creator}, s.project)
		require.ErrorIs(s.T(), err, ErrMissingSignature, tag.String())

		err = Authorize(tag, &runtime.AccountInfo{Key: runtime.Pubkey{2}, IsSigner: true}, s.project)
		require.ErrorIs(s.T(), err, ErrNotOwner, tag.String())

		err = Authorize(tag, &runtime.AccountInfo{Key: s.creator, IsSigner: true}, nil)
		require.ErrorIs(s.T(), err, ErrNotOwner, tag.String())
	}
}

func (s *AuthTestSuite) TestUnknown() {
	err := Authorize(InstructionTag(42), &runtime.AccountInfo{IsSigner: true}, s.project)
	require.ErrorIs(s.T(), err, ErrUnknownInstruction)

	err = Authorize(TagVote, nil, s.project)
	require.ErrorIs(s.T(), err, ErrMissingSignature)
}
