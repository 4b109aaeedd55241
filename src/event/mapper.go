package event

import (
	"github.com/colabio/crowdfund/src/ledger"
	"github.com/colabio/crowdfund/src/utils/config"
	"github.com/colabio/crowdfund/src/utils/task"
)

// Turns receipts into project events
type Mapper struct {
	*task.Task

	input  chan *ledger.Receipt
	Output chan *ProjectEvent
}

func NewMapper(config *config.Config) (self *Mapper) {
	self = new(Mapper)

	self.Output = make(chan *ProjectEvent)

	self.Task = task.NewTask(config, "event-mapper").
		WithSubtaskFunc(self.run).
		WithOnAfterStop(func() {
			close(self.Output)
		})

	return
}

func (self *Mapper) WithInputChannel(v chan *ledger.Receipt) *Mapper {
	self.input = v
	return self
}

func (self *Mapper) run() (err error) {
	for {
		select {
		case <-self.StopChannel:
			return
		case receipt, ok := <-self.input:
			if !ok {
				return
			}

			event, err := NewProjectEvent(receipt)
			if err != nil {
				self.Log.WithError(err).WithField("id", receipt.Id).Warn("Failed to build event, skipping")
				continue
			}
			if event == nil {
				continue
			}

			select {
			case <-self.Ctx.Done():
				return nil
			case self.Output <- event:
			}
		}
	}
}
