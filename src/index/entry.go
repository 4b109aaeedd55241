package index

import (
	"fmt"

	"github.com/colabio/crowdfund/src/ledger"
	"github.com/colabio/crowdfund/src/program"
	"github.com/colabio/crowdfund/src/runtime"
	"github.com/colabio/crowdfund/src/utils/model"
)

// Rows derived from a single receipt
type Entry struct {
	Transaction  model.Transaction
	Project      *model.Project
	Contribution *model.Contribution
	Validation   *model.Validation
	Vote         *model.Vote
}

// Account positions shared by all instructions
const (
	projectAccountIndex = 1
	recordAccountIndex  = 2
)

// Builds rows from a receipt. Failed transactions only produce the transaction row.
func NewEntry(receipt *ledger.Receipt) (self *Entry, err error) {
	self = new(Entry)
	self.Transaction = model.Transaction{
		Id:        receipt.Id,
		Slot:      receipt.Slot,
		Error:     receipt.Error,
		Timestamp: receipt.Timestamp,
	}

	for _, meta := range receipt.Accounts {
		if meta.IsSigner {
			self.Transaction.Signer = meta.Pubkey.String()
			break
		}
	}

	if key, ok := receipt.AccountKey(projectAccountIndex); ok {
		self.Transaction.Project = key.String()
	}

	instruction, err := program.Unpack(receipt.Data)
	if err != nil {
		self.Transaction.Instruction = program.InstructionTag(0xff).String()
		if receipt.Failed() {
			// Garbage rejected by the program is still worth a row
			err = nil
		}
		return
	}
	self.Transaction.Instruction = instruction.Tag().String()

	if receipt.Failed() {
		return
	}

	err = self.decodeProject(receipt)
	if err != nil {
		return
	}

	switch instruction.(type) {
	case program.Contribute:
		err = self.decodeContribution(receipt)
	case program.ValidateMilestone:
		err = self.decodeValidation(receipt)
	case program.Vote:
		err = self.decodeVote(receipt)
	}
	return
}

func (self *Entry) decodeProject(receipt *ledger.Receipt) (err error) {
	key, ok := receipt.AccountKey(projectAccountIndex)
	if !ok {
		return ErrMissingProjectState
	}
	state, ok := receipt.PostState(key)
	if !ok {
		return ErrMissingProjectState
	}

	project, err := program.DecodeProject(state.Data)
	if err != nil {
		return fmt.Errorf("%w: project %s: %w", ErrDecodeFailed, key, err)
	}

	self.Project = newProject(key, project, receipt.Slot)
	return
}

func (self *Entry) recordState(receipt *ledger.Receipt) (key runtime.Pubkey, state *ledger.AccountState, err error) {
	key, ok := receipt.AccountKey(recordAccountIndex)
	if !ok {
		err = ErrMissingRecordState
		return
	}
	state, ok = receipt.PostState(key)
	if !ok {
		err = ErrMissingRecordState
	}
	return
}

func (self *Entry) decodeContribution(receipt *ledger.Receipt) (err error) {
	key, state, err := self.recordState(receipt)
	if err != nil {
		return
	}
	record, err := program.DecodeContribution(state.Data)
	if err != nil {
		return fmt.Errorf("%w: contribution %s: %w", ErrDecodeFailed, key, err)
	}
	self.Contribution = &model.Contribution{
		TxId:        receipt.Id,
		Address:     key.String(),
		Contributor: record.Contributor.String(),
		Project:     record.Project.String(),
		Amount:      record.Amount,
		Timestamp:   record.Timestamp,
		Slot:        receipt.Slot,
	}
	return
}

func (self *Entry) decodeValidation(receipt *ledger.Receipt) (err error) {
	key, state, err := self.recordState(receipt)
	if err != nil {
		return
	}
	record, err := program.DecodeValidation(state.Data)
	if err != nil {
		return fmt.Errorf("%w: validation %s: %w", ErrDecodeFailed, key, err)
	}
	self.Validation = &model.Validation{
		TxId:           receipt.Id,
		Address:        key.String(),
		Validator:      record.Validator.String(),
		Project:        record.Project.String(),
		MilestoneIndex: record.MilestoneIndex,
		Timestamp:      record.Timestamp,
		Slot:           receipt.Slot,
	}
	return
}

func (self *Entry) decodeVote(receipt *ledger.Receipt) (err error) {
	key, state, err := self.recordState(receipt)
	if err != nil {
		return
	}
	record, err := program.DecodeVote(state.Data)
	if err != nil {
		return fmt.Errorf("%w: vote %s: %w", ErrDecodeFailed, key, err)
	}
	self.Vote = &model.Vote{
		TxId:      receipt.Id,
		Address:   key.String(),
		Voter:     record.Voter.String(),
		Project:   record.Project.String(),
		Approve:   record.Approve,
		Timestamp: record.Timestamp,
		Slot:      receipt.Slot,
	}
	return
}

func newProject(key runtime.Pubkey, project *program.Project, slot uint64) *model.Project {
	out := &model.Project{
		Address:      key.String(),
		Creator:      project.Creator.String(),
		Title:        project.Title,
		Description:  project.Description,
		GoalAmount:   project.GoalAmount,
		RaisedAmount: project.RaisedAmount,
		StartTime:    project.StartTime,
		EndTime:      project.EndTime,
		Status:       project.Status.String(),
		ApproveVotes: project.ApproveVotes,
		RejectVotes:  project.RejectVotes,
		Slot:         slot,
		Milestones:   make([]model.Milestone, 0, len(project.Milestones)),
	}
	for i, m := range project.Milestones {
		out.Milestones = append(out.Milestones, model.Milestone{
			ProjectAddress: out.Address,
			Position:       uint8(i),
			Name:           m.Name,
			Description:    m.Description,
			Amount:         m.Amount,
			Completed:      m.Completed,
			Validations:    m.Validations,
		})
	}
	return out
}
