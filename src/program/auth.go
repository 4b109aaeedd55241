package program

import "github.com/colabio/crowdfund/src/runtime"

// Decides whether the caller may run an operation on a project.
// Project is nil for InitializeProject, the record doesn't exist yet.
type Capability func(caller *runtime.AccountInfo, project *Project) error

var capabilities = map[InstructionTag]Capability{
	TagInitializeProject: requireSigner,
	TagContribute:        requireSigner,
	TagValidateMilestone: requireSigner,
	TagVote:              requireSigner,
	TagReleaseFunds:      requireCreator,
	TagCancelProject:     requireCreator,
}

// Checks the caller's capability for the operation identified by tag
func Authorize(tag InstructionTag, caller *runtime.AccountInfo, project *Project) error {
	capability, ok := capabilities[tag]
	if !ok {
		return ErrUnknownInstruction
	}
	return capability(caller, project)
}

func requireSigner(caller *runtime.AccountInfo, _ *Project) error {
	if caller == nil || !caller.IsSigner {
		return ErrMissingSignature
	}
	return nil
}

func requireCreator(caller *runtime.AccountInfo, project *Project) error {
	err := requireSigner(caller, project)
	if err != nil {
		return err
	}
	if project == nil || caller.Key != project.Creator {
		return ErrNotOwner
	}
	return nil
}
