package event

import (
	"fmt"
	"strconv"

	"github.com/colabio/crowdfund/src/ledger"
	"github.com/colabio/crowdfund/src/program"

	"github.com/hamba/avro"
)

var projectEventSchema = avro.MustParse(`{
	"type": "record",
	"name": "ProjectEvent",
	"namespace": "crowdfund",
	"fields": [
		{"name": "tx_id", "type": "string"},
		{"name": "slot", "type": "string", "doc": "u64, base 10"},
		{"name": "timestamp", "type": "long"},
		{"name": "instruction", "type": "string"},
		{"name": "project", "type": "string"},
		{"name": "signer", "type": "string"},
		{"name": "status", "type": "string"},
		{"name": "goal_amount", "type": "string", "doc": "u64, base 10"},
		{"name": "raised_amount", "type": "string", "doc": "u64, base 10"},
		{"name": "milestone_index", "type": "int"},
		{"name": "amount", "type": "string", "doc": "u64, base 10"},
		{"name": "error", "type": "string"}
	]
}`)

// Published after every executed instruction addressed to a project
type ProjectEvent struct {
	TxId        string `json:"tx_id"`
	Slot        uint64 `json:"slot"`
	Timestamp   int64  `json:"timestamp"`
	Instruction string `json:"instruction"`
	Project     string `json:"project"`
	Signer      string `json:"signer"`

	// State after the instruction
	Status       string `json:"status"`
	GoalAmount   uint64 `json:"goal_amount"`
	RaisedAmount uint64 `json:"raised_amount"`

	// -1 if the instruction doesn't address a milestone
	MilestoneIndex int32 `json:"milestone_index"`

	// Contributed or released lamports, 0 otherwise
	Amount uint64 `json:"amount"`

	// Set for failed transactions, state fields are empty then
	Error string `json:"error"`
}

// Avro has no unsigned long, u64 values travel as decimal strings
type projectEventRecord struct {
	TxId           string `avro:"tx_id"`
	Slot           string `avro:"slot"`
	Timestamp      int64  `avro:"timestamp"`
	Instruction    string `avro:"instruction"`
	Project        string `avro:"project"`
	Signer         string `avro:"signer"`
	Status         string `avro:"status"`
	GoalAmount     string `avro:"goal_amount"`
	RaisedAmount   string `avro:"raised_amount"`
	MilestoneIndex int32  `avro:"milestone_index"`
	Amount         string `avro:"amount"`
	Error          string `avro:"error"`
}

// Builds the event from a receipt. Nil for receipts that don't address a project.
func NewProjectEvent(receipt *ledger.Receipt) (self *ProjectEvent, err error) {
	instruction, err := program.Unpack(receipt.Data)
	if err != nil {
		if receipt.Failed() {
			// Rejected garbage, nothing to tell subscribers
			err = nil
		}
		return
	}

	key, ok := receipt.AccountKey(1)
	if !ok {
		return
	}

	self = &ProjectEvent{
		TxId:           receipt.Id,
		Slot:           receipt.Slot,
		Timestamp:      receipt.Timestamp,
		Instruction:    instruction.Tag().String(),
		Project:        key.String(),
		MilestoneIndex: -1,
		Error:          receipt.Error,
	}

	for _, meta := range receipt.Accounts {
		if meta.IsSigner {
			self.Signer = meta.Pubkey.String()
			break
		}
	}

	switch ix := instruction.(type) {
	case program.Contribute:
		self.Amount = ix.Amount
	case program.ValidateMilestone:
		self.MilestoneIndex = int32(ix.MilestoneIndex)
	case program.ReleaseFunds:
		self.MilestoneIndex = int32(ix.MilestoneIndex)
	}

	if receipt.Failed() {
		if _, ok := instruction.(program.ReleaseFunds); ok {
			// Nothing was released
			self.Amount = 0
		}
		return
	}

	state, ok := receipt.PostState(key)
	if !ok {
		self = nil
		return
	}
	project, err := program.DecodeProject(state.Data)
	if err != nil {
		self = nil
		return
	}

	self.Status = project.Status.String()
	self.GoalAmount = project.GoalAmount
	self.RaisedAmount = project.RaisedAmount

	if ix, ok := instruction.(program.ReleaseFunds); ok && int(ix.MilestoneIndex) < len(project.Milestones) {
		self.Amount = project.Milestones[ix.MilestoneIndex].Amount
	}

	return
}

func (self *ProjectEvent) MarshalBinary() ([]byte, error) {
	return avro.Marshal(projectEventSchema, &projectEventRecord{
		TxId:           self.TxId,
		Slot:           strconv.FormatUint(self.Slot, 10),
		Timestamp:      self.Timestamp,
		Instruction:    self.Instruction,
		Project:        self.Project,
		Signer:         self.Signer,
		Status:         self.Status,
		GoalAmount:     strconv.FormatUint(self.GoalAmount, 10),
		RaisedAmount:   strconv.FormatUint(self.RaisedAmount, 10),
		MilestoneIndex: self.MilestoneIndex,
		Amount:         strconv.FormatUint(self.Amount, 10),
		Error:          self.Error,
	})
}

func (self *ProjectEvent) UnmarshalBinary(data []byte) (err error) {
	var record projectEventRecord
	err = avro.Unmarshal(projectEventSchema, data, &record)
	if err != nil {
		return
	}

	out := ProjectEvent{
		TxId:           record.TxId,
		Timestamp:      record.Timestamp,
		Instruction:    record.Instruction,
		Project:        record.Project,
		Signer:         record.Signer,
		Status:         record.Status,
		MilestoneIndex: record.MilestoneIndex,
		Error:          record.Error,
	}
	for _, field := range []struct {
		name  string
		value string
		out   *uint64
	}{
		{"slot", record.Slot, &out.Slot},
		{"goal_amount", record.GoalAmount, &out.GoalAmount},
		{"raised_amount", record.RaisedAmount, &out.RaisedAmount},
		{"amount", record.Amount, &out.Amount},
	} {
		*field.out, err = strconv.ParseUint(field.value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidNumber, field.name, err)
		}
	}

	*self = out
	return
}
