package program

import (
	"github.com/colabio/crowdfund/src/runtime"
	"github.com/colabio/crowdfund/src/utils/logger"

	"github.com/sirupsen/logrus"
)

// Crowdfunding program. Decodes instruction data and runs the matching operation
// against the accounts passed by the host.
type Processor struct {
	log *logrus.Entry
}

func NewProcessor() (self *Processor) {
	self = new(Processor)
	self.log = logger.NewSublogger("program")
	return
}

func (self *Processor) Process(inv *runtime.Invocation, accounts []*runtime.AccountInfo, data []byte) (err error) {
	instruction, err := Unpack(data)
	if err != nil {
		return
	}

	iter := &accountIter{accounts: accounts}

	switch ix := instruction.(type) {
	case InitializeProject:
		return self.initializeProject(inv, iter, &ix)
	case Contribute:
		return self.contribute(inv, iter, ix.Amount)
	case ValidateMilestone:
		return self.validateMilestone(inv, iter, ix.MilestoneIndex)
	case ReleaseFunds:
		return self.releaseFunds(inv, iter, ix.MilestoneIndex)
	case CancelProject:
		return self.cancelProject(inv, iter)
	case Vote:
		return self.vote(inv, iter, ix.Approve)
	}
	return ErrUnknownInstruction
}

func (self *Processor) initializeProject(inv *runtime.Invocation, iter *accountIter, ix *InitializeProject) (err error) {
	creator, project, rentSysvar, systemProgram, err := iter.next4()
	if err != nil {
		return
	}

	err = Authorize(TagInitializeProject, creator, nil)
	if err != nil {
		return
	}
	if rentSysvar.Key != runtime.SysvarRentId {
		return ErrInvalidSysvar
	}
	err = checkSystemProgram(systemProgram)
	if err != nil {
		return
	}
	if project.IsOwnedBy(inv.ProgramId) {
		return ErrAlreadyInitialized
	}

	err = inv.CreateAccount(creator, project, inv.Rent().MinimumBalance(ProjectSpace), ProjectSpace, inv.ProgramId)
	if err != nil {
		return
	}

	now := unixNow(inv)
	end, carry := addU64(now, ix.Duration)
	if carry {
		return ErrArithmeticOverflow
	}

	state := Project{
		Creator:     creator.Key,
		Title:       ix.Title,
		Description: ix.Description,
		GoalAmount:  ix.GoalAmount,
		StartTime:   now,
		EndTime:     end,
		Milestones:  make([]Milestone, len(ix.Milestones)),
		Status:      StatusPending,
	}
	for i, milestone := range ix.Milestones {
		state.Milestones[i] = Milestone{
			Name:        milestone.Name,
			Description: milestone.Description,
			Amount:      milestone.Amount,
		}
	}
	if len(state.Milestones) == 0 {
		state.Milestones = nil
	}

	err = store(project, state)
	if err != nil {
		return
	}

	self.log.WithField("project", project.Key).WithField("title", state.Title).Info("Project initialized")
	return
}

func (self *Processor) contribute(inv *runtime.Invocation, iter *accountIter, amount uint64) (err error) {
	contributor, projectAccount, record, systemProgram, err := iter.next4()
	if err != nil {
		return
	}

	err = Authorize(TagContribute, contributor, nil)
	if err != nil {
		return
	}
	err = checkSystemProgram(systemProgram)
	if err != nil {
		return
	}

	project, err := loadProject(inv, projectAccount)
	if err != nil {
		return
	}

	now := unixNow(inv)
	err = project.Contribute(amount, now)
	if err != nil {
		return
	}

	err = ensureRecord(inv, contributor, record)
	if err != nil {
		return
	}

	err = inv.Transfer(contributor, projectAccount, amount)
	if err != nil {
		return
	}

	err = SaveProject(projectAccount, project)
	if err != nil {
		return
	}
	err = store(record, ContributionRecord{
		Contributor: contributor.Key,
		Project:     projectAccount.Key,
		Amount:      amount,
		Timestamp:   now,
	})
	if err != nil {
		return
	}

	self.log.WithField("project", projectAccount.Key).WithField("amount", amount).Info("Contribution received")
	return
}

func (self *Processor) validateMilestone(inv *runtime.Invocation, iter *accountIter, index uint8) (err error) {
	validator, projectAccount, record, systemProgram, err := iter.next4()
	if err != nil {
		return
	}

	err = Authorize(TagValidateMilestone, validator, nil)
	if err != nil {
		return
	}
	err = checkSystemProgram(systemProgram)
	if err != nil {
		return
	}

	project, err := loadProject(inv, projectAccount)
	if err != nil {
		return
	}

	reached, err := project.Validate(index)
	if err != nil {
		return
	}

	err = ensureRecord(inv, validator, record)
	if err != nil {
		return
	}

	err = SaveProject(projectAccount, project)
	if err != nil {
		return
	}
	err = store(record, ValidationRecord{
		Validator:      validator.Key,
		Project:        projectAccount.Key,
		MilestoneIndex: index,
		Timestamp:      unixNow(inv),
	})
	if err != nil {
		return
	}

	log := self.log.WithField("project", projectAccount.Key).WithField("milestone", index)
	if reached {
		log.Info("Milestone completed")
	} else {
		log.Debug("Milestone validated")
	}
	return
}

func (self *Processor) releaseFunds(inv *runtime.Invocation, iter *accountIter, index uint8) (err error) {
	creator, projectAccount, err := iter.next2()
	if err != nil {
		return
	}
	systemProgram, err := iter.next()
	if err != nil {
		return
	}

	err = requireSigner(creator, nil)
	if err != nil {
		return
	}

	project, err := loadProject(inv, projectAccount)
	if err != nil {
		return
	}

	err = Authorize(TagReleaseFunds, creator, project)
	if err != nil {
		return
	}
	err = checkSystemProgram(systemProgram)
	if err != nil {
		return
	}

	amount, err := project.Release(index)
	if err != nil {
		return
	}

	seeds, err := runtime.EscrowSeeds(inv.ProgramId, projectAccount.Key)
	if err != nil {
		return
	}
	err = inv.TransferSigned(projectAccount, creator, amount, seeds)
	if err != nil {
		return
	}

	err = SaveProject(projectAccount, project)
	if err != nil {
		return
	}

	self.log.WithField("project", projectAccount.Key).WithField("milestone", index).WithField("amount", amount).Info("Funds released")
	return
}

func (self *Processor) cancelProject(inv *runtime.Invocation, iter *accountIter) (err error) {
	creator, projectAccount, err := iter.next2()
	if err != nil {
		return
	}

	err = requireSigner(creator, nil)
	if err != nil {
		return
	}

	project, err := loadProject(inv, projectAccount)
	if err != nil {
		return
	}

	err = Authorize(TagCancelProject, creator, project)
	if err != nil {
		return
	}

	err = project.Cancel()
	if err != nil {
		return
	}

	err = SaveProject(projectAccount, project)
	if err != nil {
		return
	}

	self.log.WithField("project", projectAccount.Key).Info("Project cancelled")
	return
}

func (self *Processor) vote(inv *runtime.Invocation, iter *accountIter, approve bool) (err error) {
	voter, projectAccount, record, systemProgram, err := iter.next4()
	if err != nil {
		return
	}

	err = Authorize(TagVote, voter, nil)
	if err != nil {
		return
	}
	err = checkSystemProgram(systemProgram)
	if err != nil {
		return
	}

	project, err := loadProject(inv, projectAccount)
	if err != nil {
		return
	}

	err = project.Vote(approve)
	if err != nil {
		return
	}

	err = ensureRecord(inv, voter, record)
	if err != nil {
		return
	}

	err = SaveProject(projectAccount, project)
	if err != nil {
		return
	}
	err = store(record, VoteRecord{
		Voter:     voter.Key,
		Project:   projectAccount.Key,
		Approve:   approve,
		Timestamp: unixNow(inv),
	})
	if err != nil {
		return
	}

	self.log.WithField("project", projectAccount.Key).
		WithField("approve", approve).
		WithField("status", project.Status).
		Debug("Vote recorded")
	return
}

// Decodes a project that can be modified by this instruction
func loadProject(inv *runtime.Invocation, account *runtime.AccountInfo) (project *Project, err error) {
	if !account.IsOwnedBy(inv.ProgramId) {
		err = ErrIllegalOwner
		return
	}
	if !account.IsWritable {
		err = runtime.ErrReadonlyAccount
		return
	}
	return DecodeProject(account.Data)
}

// Allocates a side record on first use. Existing ones are overwritten.
func ensureRecord(inv *runtime.Invocation, payer, record *runtime.AccountInfo) (err error) {
	if !record.IsOwnedBy(inv.ProgramId) {
		return inv.CreateAccount(payer, record, inv.Rent().MinimumBalance(RecordSpace), RecordSpace, inv.ProgramId)
	}
	if len(record.Data) != RecordSpace {
		return ErrRecordMismatch
	}
	if !record.IsWritable {
		return runtime.ErrReadonlyAccount
	}
	return
}

func checkSystemProgram(account *runtime.AccountInfo) error {
	if account.Key != runtime.SystemProgramId {
		return ErrIncorrectProgramId
	}
	return nil
}

func unixNow(inv *runtime.Invocation) uint64 {
	now := inv.Now().Unix()
	if now < 0 {
		return 0
	}
	return uint64(now)
}

func addU64(a, b uint64) (sum uint64, carry bool) {
	sum = a + b
	carry = sum < a
	return
}

type accountIter struct {
	accounts []*runtime.AccountInfo
	pos      int
}

func (self *accountIter) next() (out *runtime.AccountInfo, err error) {
	if self.pos >= len(self.accounts) {
		err = ErrNotEnoughAccountKeys
		return
	}
	out = self.accounts[self.pos]
	self.pos++
	return
}

func (self *accountIter) next2() (a, b *runtime.AccountInfo, err error) {
	if a, err = self.next(); err != nil {
		return
	}
	b, err = self.next()
	return
}

func (self *accountIter) next4() (a, b, c, d *runtime.AccountInfo, err error) {
	if a, b, err = self.next2(); err != nil {
		return
	}
	c, d, err = self.next2()
	return
}
