package task

import (
	"github.com/colabio/crowdfund/src/utils/config"
)

// Forwards every message from the input channel to all output channels.
// Outputs are written in order, a slow consumer slows down the others.
type Duplicator[In any] struct {
	*Task

	input  chan In
	output []chan In
}

func NewDuplicator[In any](config *config.Config, name string) (self *Duplicator[In]) {
	self = new(Duplicator[In])

	self.Task = NewTask(config, name).
		WithSubtaskFunc(self.run).
		WithOnAfterStop(func() {
			for _, ch := range self.output {
				close(ch)
			}
		})

	return
}

func (self *Duplicator[In]) WithInputChannel(v chan In) *Duplicator[In] {
	self.input = v
	return self
}

// Creates a new output channel, must be called before Start
func (self *Duplicator[In]) NewOutput(bufferSize int) (out chan In) {
	out = make(chan In, bufferSize)
	self.output = append(self.output, out)
	return
}

func (self *Duplicator[In]) run() (err error) {
	for {
		select {
		case <-self.StopChannel:
			return
		case in, ok := <-self.input:
			if !ok {
				return
			}
			for _, ch := range self.output {
				select {
				case <-self.Ctx.Done():
					return
				case ch <- in:
				}
			}
		}
	}
}
