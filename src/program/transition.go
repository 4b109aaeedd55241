package program

import "math/bits"

// State transitions on the decoded project. They don't touch accounts or balances,
// the processor applies their results.

func (self *Project) Contribute(amount, now uint64) (err error) {
	if self.Status != StatusActive || now > self.EndTime {
		return ErrInvalidState
	}

	raised, carry := bits.Add64(self.RaisedAmount, amount, 0)
	if carry != 0 {
		return ErrArithmeticOverflow
	}
	self.RaisedAmount = raised
	return
}

// Counts one validation. Returns true when this validation reached the quorum.
func (self *Project) Validate(index uint8) (reached bool, err error) {
	if self.Status != StatusActive {
		err = ErrInvalidState
		return
	}
	milestone, err := self.milestone(index)
	if err != nil {
		return
	}
	if milestone.Validations == ^uint32(0) {
		err = ErrArithmeticOverflow
		return
	}

	milestone.Validations++
	if milestone.Validations >= ValidationQuorum {
		reached = !milestone.Completed
		milestone.Completed = true
	}
	return
}

// Returns the amount to pay out for a completed milestone.
// Marks the project completed once every milestone is.
func (self *Project) Release(index uint8) (amount uint64, err error) {
	if self.Status != StatusActive {
		err = ErrInvalidState
		return
	}
	milestone, err := self.milestone(index)
	if err != nil {
		return
	}
	if !milestone.Completed {
		err = ErrMilestoneNotComplete
		return
	}

	amount = milestone.Amount
	if self.AllMilestonesCompleted() {
		self.Status = StatusCompleted
	}
	return
}

func (self *Project) Cancel() (err error) {
	if self.Status != StatusPending && self.Status != StatusActive {
		return ErrInvalidState
	}
	self.Status = StatusCancelled
	return
}

func (self *Project) Vote(approve bool) (err error) {
	if self.Status != StatusPending {
		return ErrInvalidState
	}

	if approve {
		self.ApproveVotes++
	} else {
		self.RejectVotes++
	}

	if self.ApproveVotes >= ActivationQuorum {
		self.Status = StatusActive
	} else if self.RejectVotes >= ActivationQuorum {
		self.Status = StatusCancelled
	}
	return
}

func (self *Project) AllMilestonesCompleted() bool {
	for _, milestone := range self.Milestones {
		if !milestone.Completed {
			return false
		}
	}
	return true
}

func (self *Project) milestone(index uint8) (*Milestone, error) {
	if int(index) >= len(self.Milestones) {
		return nil, ErrIndexOutOfRange
	}
	return &self.Milestones[index], nil
}
