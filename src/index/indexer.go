package index

import (
	"github.com/colabio/crowdfund/src/ledger"
	"github.com/colabio/crowdfund/src/utils/config"
	"github.com/colabio/crowdfund/src/utils/model"
	"github.com/colabio/crowdfund/src/utils/monitoring"
	"github.com/colabio/crowdfund/src/utils/task"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Indexer saves executed transactions and decoded accounts to the SQL database.
// - groups incoming receipts into batches,
// - keeps only the newest state of each project in a batch,
// - counts repeated attestations
type Indexer struct {
	*task.Processor[*ledger.Receipt, *Entry]

	DB      *gorm.DB
	monitor monitoring.Monitor

	// Slot of the last receipt passed to flush
	lastSlot uint64
}

func NewIndexer(config *config.Config) (self *Indexer) {
	self = new(Indexer)

	self.Processor = task.NewProcessor[*ledger.Receipt, *Entry](config, "indexer").
		WithBatchSize(config.Indexer.BatchSize).
		WithOnFlush(config.Indexer.FlushInterval, self.flush).
		WithOnProcess(self.process).
		WithBackoff(config.Indexer.MaxElapsedTime, config.Indexer.MaxInterval)

	self.Processor.Task = self.Processor.Task.
		WithOnBeforeStart(self.loadState)

	return
}

func (self *Indexer) WithMonitor(v monitoring.Monitor) *Indexer {
	self.monitor = v
	return self
}

func (self *Indexer) WithInputChannel(v chan *ledger.Receipt) *Indexer {
	self.Processor = self.Processor.WithInputChannel(v)
	return self
}

func (self *Indexer) WithDB(v *gorm.DB) *Indexer {
	self.DB = v
	return self
}

func (self *Indexer) loadState() (err error) {
	var state model.State
	err = self.DB.WithContext(self.Ctx).
		Where("name = ?", model.SyncedComponentIndexer).
		Limit(1).
		Find(&state).
		Error
	if err != nil {
		return
	}

	self.lastSlot = state.LastSlot
	if self.monitor != nil {
		self.monitor.GetReport().Indexer.State.LastIndexedSlot.Store(state.LastSlot)
	}
	self.Log.WithField("slot", state.LastSlot).Info("Indexer state loaded")
	return
}

func (self *Indexer) process(receipt *ledger.Receipt) (out []*Entry, err error) {
	entry, err := NewEntry(receipt)
	if err != nil {
		if self.monitor != nil {
			self.monitor.GetReport().Indexer.Errors.Decode.Inc()
		}
		self.Log.WithError(err).WithField("id", receipt.Id).Warn("Failed to decode receipt, saving transaction only")

		// Transaction itself is still saved
		entry = &Entry{Transaction: entry.Transaction}
		err = nil
	}

	if self.monitor != nil {
		self.monitor.GetReport().Indexer.State.ReceiptsProcessed.Inc()
	}

	out = []*Entry{entry}
	return
}

func (self *Indexer) flush(entries []*Entry) (out []*Entry, err error) {
	if len(entries) == 0 {
		return
	}

	var (
		transactions  = make([]*model.Transaction, 0, len(entries))
		projects      = make(map[string]*model.Project)
		projectOrder  []string
		contributions []*model.Contribution
		validations   []*model.Validation
		votes         []*model.Vote
		lastSlot      = self.lastSlot
	)

	for _, entry := range entries {
		transactions = append(transactions, &entry.Transaction)
		if entry.Transaction.Slot > lastSlot {
			lastSlot = entry.Transaction.Slot
		}

		if entry.Project != nil {
			prev, ok := projects[entry.Project.Address]
			if !ok {
				projectOrder = append(projectOrder, entry.Project.Address)
			}
			if !ok || prev.Slot <= entry.Project.Slot {
				projects[entry.Project.Address] = entry.Project
			}
		}
		if entry.Contribution != nil {
			contributions = append(contributions, entry.Contribution)
		}
		if entry.Validation != nil {
			validations = append(validations, entry.Validation)
		}
		if entry.Vote != nil {
			votes = append(votes, entry.Vote)
		}
	}

	self.Log.WithField("num", len(entries)).WithField("slot", lastSlot).Debug("-> Saving receipts")
	defer self.Log.WithField("num", len(entries)).WithField("slot", lastSlot).Debug("<- Saving receipts")

	var rows, duplicates uint64
	// Final flush happens after Stop cancels Ctx
	err = self.DB.WithContext(self.CtxRunning).
		Transaction(func(tx *gorm.DB) (err error) {
			rows, duplicates = 0, 0

			err = tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(transactions).
				Error
			if err != nil {
				return
			}
			rows += uint64(len(transactions))

			for _, address := range projectOrder {
				project := projects[address]
				err = tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "address"}},
					UpdateAll: true,
				}).
					Omit(clause.Associations).
					Create(project).
					Error
				if err != nil {
					return
				}
				rows++

				if len(project.Milestones) == 0 {
					continue
				}
				err = tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "project_address"}, {Name: "position"}},
					UpdateAll: true,
				}).
					Create(&project.Milestones).
					Error
				if err != nil {
					return
				}
				rows += uint64(len(project.Milestones))
			}

			// Repeated attestations are kept, but counted
			for _, validation := range validations {
				var count int64
				err = tx.Model(&model.Validation{}).
					Where("project = ? AND milestone_index = ? AND validator = ? AND tx_id <> ?",
						validation.Project, validation.MilestoneIndex, validation.Validator, validation.TxId).
					Count(&count).
					Error
				if err != nil {
					return
				}
				if count > 0 {
					duplicates++
				}

				err = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(validation).Error
				if err != nil {
					return
				}
				rows++
			}

			for _, vote := range votes {
				var count int64
				err = tx.Model(&model.Vote{}).
					Where("project = ? AND voter = ? AND tx_id <> ?", vote.Project, vote.Voter, vote.TxId).
					Count(&count).
					Error
				if err != nil {
					return
				}
				if count > 0 {
					duplicates++
				}

				err = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(vote).Error
				if err != nil {
					return
				}
				rows++
			}

			if len(contributions) > 0 {
				err = tx.Clauses(clause.OnConflict{DoNothing: true}).
					Create(contributions).
					Error
				if err != nil {
					return
				}
				rows += uint64(len(contributions))
			}

			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"last_slot", "updated_at"}),
			}).
				Create(&model.State{
					Name:     model.SyncedComponentIndexer,
					LastSlot: lastSlot,
				}).
				Error
		})
	if err != nil {
		if self.monitor != nil {
			self.monitor.GetReport().Indexer.Errors.DbSave.Inc()
		}
		return
	}

	self.lastSlot = lastSlot

	if self.monitor != nil {
		self.monitor.GetReport().Indexer.State.LastIndexedSlot.Store(lastSlot)
		self.monitor.GetReport().Indexer.State.RowsSaved.Add(rows)
		self.monitor.GetReport().Indexer.State.DuplicateAttestations.Add(duplicates)
	}

	return entries, nil
}
