package monitor_node

import (
	"math"
	"net/http"
	"time"

	"github.com/colabio/crowdfund/src/utils/monitoring/report"
	"github.com/colabio/crowdfund/src/utils/task"

	"github.com/gammazero/deque"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report report.Report

	historySize int

	collector *Collector

	// Transaction processing speed
	TransactionCounts *deque.Deque[uint64]

	// Storage errors seen during the previous check
	storageErrors atomic.Uint64
	healthy       atomic.Bool
}

func NewMonitor() (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Run:            &report.RunReport{},
		Bank:           &report.BankReport{},
		Indexer:        &report.IndexerReport{},
		RedisPublisher: &report.RedisPublisherReport{},
		Api:            &report.ApiReport{},
	}

	// Initialization
	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())
	self.healthy.Store(true)

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(nil, "monitor").
		WithPeriodicSubtaskFunc(time.Minute, self.monitorTransactions).
		WithPeriodicSubtaskFunc(30*time.Second, self.monitorStorage).
		WithPeriodicSubtaskFunc(10*time.Second, self.monitorUptime)

	return self.WithMaxHistorySize(30)
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.historySize = maxHistorySize
	self.TransactionCounts = deque.New[uint64](self.historySize)
	return self
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}

// Measure transaction processing speed
func (self *Monitor) monitorTransactions() (err error) {
	loaded := self.Report.Bank.State.TransactionsExecuted.Load()
	if loaded == 0 {
		// Neglect the first 0
		return
	}

	self.TransactionCounts.PushBack(loaded)
	if self.TransactionCounts.Len() > self.historySize {
		self.TransactionCounts.PopFront()
	}
	value := float64(self.TransactionCounts.Back()-self.TransactionCounts.Front()) / float64(self.TransactionCounts.Len())
	self.Report.Bank.State.AverageTransactionsPerMinute.Store(round(value))
	return
}

// Unhealthy when the ledger failed to persist anything since the last check
func (self *Monitor) monitorStorage() (err error) {
	current := self.Report.Bank.Errors.Storage.Load()
	previous := self.storageErrors.Swap(current)
	self.healthy.Store(current == previous)
	return
}

func (self *Monitor) monitorUptime() (err error) {
	self.Report.Run.State.UpForSeconds.Store(uint64(time.Now().Unix() - self.Report.Run.State.StartTimestamp.Load()))
	return
}

func (self *Monitor) IsOK() bool {
	return self.healthy.Load()
}

func (self *Monitor) OnGetState(c *gin.Context) {
	_ = self.monitorUptime()
	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
