package node

import (
	"github.com/colabio/crowdfund/src/api"
	"github.com/colabio/crowdfund/src/event"
	"github.com/colabio/crowdfund/src/index"
	"github.com/colabio/crowdfund/src/ledger"
	"github.com/colabio/crowdfund/src/program"
	"github.com/colabio/crowdfund/src/runtime"
	"github.com/colabio/crowdfund/src/utils/config"
	"github.com/colabio/crowdfund/src/utils/model"
	monitor_node "github.com/colabio/crowdfund/src/utils/monitoring/node"
	"github.com/colabio/crowdfund/src/utils/publisher"
	"github.com/colabio/crowdfund/src/utils/task"

	"gorm.io/gorm"
)

// Runs the ledger with everything around it
type Controller struct {
	*task.Task

	Bank    *ledger.Bank
	Server  *api.Server
	Monitor *monitor_node.Monitor
}

func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "node")

	programId, err := runtime.ParsePubkey(config.Program.Id)
	if err != nil {
		return
	}

	// Monitoring
	monitor := monitor_node.NewMonitor()
	self.Monitor = monitor

	// Accounts
	accounts, err := ledger.OpenAccountsDB(config)
	if err != nil {
		return
	}

	self.Bank = ledger.NewBank(config).
		WithAccountsDB(accounts).
		WithProgram(programId, program.NewProcessor()).
		WithMonitor(monitor).
		WithOnReceipt(countInstructions(monitor)).
		WithOutputChannel(config.Ledger.OutputBufferSize)

	// REST API
	self.Server = api.NewServer(config).
		WithMonitor(monitor).
		WithBank(self.Bank).
		WithProgramId(programId)
	self.Bank.WithOnReceipt(self.Server.OnReceipt)

	// Every consumer gets all receipts
	duplicator := task.NewDuplicator[*ledger.Receipt](config, "receipts").
		WithInputChannel(self.Bank.Output)

	self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(self.Bank.Task).
		WithSubtask(duplicator.Task)

	var db *gorm.DB
	if config.Indexer.Enabled {
		db, err = model.NewConnection(self.Ctx, config, "node")
		if err != nil {
			_ = accounts.Close()
			return
		}

		indexer := index.NewIndexer(config).
			WithDB(db).
			WithMonitor(monitor).
			WithInputChannel(duplicator.NewOutput(config.Indexer.BatchSize))
		self.Server.WithIndex(index.NewQuery(db))

		self.Task.WithSubtask(indexer.Task)
	}

	if config.Redis.Enabled {
		mapper := event.NewMapper(config).
			WithInputChannel(duplicator.NewOutput(config.Redis.MaxQueueSize))

		redisPublisher := publisher.NewRedisPublisher[*event.ProjectEvent](config, config.Redis, "redis-publisher").
			WithInputChannel(mapper.Output).
			WithMonitor(monitor)

		self.Task.
			WithSubtask(mapper.Task).
			WithSubtask(redisPublisher.Task)
	}

	self.Task.
		WithSubtask(self.Server.Task).
		WithOnAfterStop(func() {
			err := accounts.Close()
			if err != nil {
				self.Log.WithError(err).Error("Failed to close accounts database")
			}

			if db == nil {
				return
			}
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.Close()
			}
			if err != nil {
				self.Log.WithError(err).Error("Failed to close index database")
			}
		})

	return
}
