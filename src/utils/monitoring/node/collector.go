package monitor_node

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	StartTimestamp *prometheus.Desc
	UpForSeconds   *prometheus.Desc

	// Bank
	CurrentSlot                  *prometheus.Desc
	TransactionsExecuted         *prometheus.Desc
	TransactionsFailed           *prometheus.Desc
	AverageTransactionsPerMinute *prometheus.Desc
	Instructions                 *prometheus.Desc

	// Indexer
	LastIndexedSlot       *prometheus.Desc
	ReceiptsProcessed     *prometheus.Desc
	RowsSaved             *prometheus.Desc
	DuplicateAttestations *prometheus.Desc

	// Publisher
	MessagesPublished *prometheus.Desc

	// Api
	TransactionsReceived *prometheus.Desc
	CacheHits            *prometheus.Desc
	CacheMisses          *prometheus.Desc

	// Errors
	BankSignatureVerificationErrors *prometheus.Desc
	BankConflicts                   *prometheus.Desc
	BankStorageErrors               *prometheus.Desc
	BankDuplicateTransactions       *prometheus.Desc
	IndexerDecodeErrors             *prometheus.Desc
	IndexerDbSaveErrors             *prometheus.Desc
	PublisherEncodeErrors           *prometheus.Desc
	PublisherErrors                 *prometheus.Desc
	PublisherPersistentErrors       *prometheus.Desc
	ApiRateLimited                  *prometheus.Desc
	ApiBadRequests                  *prometheus.Desc
	ApiRejected                     *prometheus.Desc
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "crowdfund",
	}

	return &Collector{
		StartTimestamp: prometheus.NewDesc("start_timestamp", "", nil, labels),
		UpForSeconds:   prometheus.NewDesc("up_for_seconds", "", nil, labels),

		CurrentSlot:                  prometheus.NewDesc("bank_current_slot", "", nil, labels),
		TransactionsExecuted:         prometheus.NewDesc("bank_transactions_executed", "", nil, labels),
		TransactionsFailed:           prometheus.NewDesc("bank_transactions_failed", "", nil, labels),
		AverageTransactionsPerMinute: prometheus.NewDesc("bank_average_transactions_per_minute", "", nil, labels),
		Instructions:                 prometheus.NewDesc("bank_instructions", "Successful instructions by type", []string{"instruction"}, labels),

		LastIndexedSlot:       prometheus.NewDesc("indexer_last_indexed_slot", "", nil, labels),
		ReceiptsProcessed:     prometheus.NewDesc("indexer_receipts_processed", "", nil, labels),
		RowsSaved:             prometheus.NewDesc("indexer_rows_saved", "", nil, labels),
		DuplicateAttestations: prometheus.NewDesc("indexer_duplicate_attestations", "Votes and validations repeated by the same identity", nil, labels),

		MessagesPublished: prometheus.NewDesc("publisher_messages_published", "", nil, labels),

		TransactionsReceived: prometheus.NewDesc("api_transactions_received", "", nil, labels),
		CacheHits:            prometheus.NewDesc("api_cache_hits", "", nil, labels),
		CacheMisses:          prometheus.NewDesc("api_cache_misses", "", nil, labels),

		// Errors
		BankSignatureVerificationErrors: prometheus.NewDesc("error_bank_signature_verification", "", nil, labels),
		BankConflicts:                   prometheus.NewDesc("error_bank_conflicts", "", nil, labels),
		BankStorageErrors:               prometheus.NewDesc("error_bank_storage", "", nil, labels),
		BankDuplicateTransactions:       prometheus.NewDesc("error_bank_duplicate_transactions", "Replayed transactions rejected", nil, labels),
		IndexerDecodeErrors:             prometheus.NewDesc("error_indexer_decode", "", nil, labels),
		IndexerDbSaveErrors:             prometheus.NewDesc("error_indexer_db_save", "", nil, labels),
		PublisherEncodeErrors:           prometheus.NewDesc("error_publisher_encode", "", nil, labels),
		PublisherErrors:                 prometheus.NewDesc("error_publisher_publish", "", nil, labels),
		PublisherPersistentErrors:       prometheus.NewDesc("error_publisher_persistent", "", nil, labels),
		ApiRateLimited:                  prometheus.NewDesc("error_api_rate_limited", "", nil, labels),
		ApiBadRequests:                  prometheus.NewDesc("error_api_bad_request", "", nil, labels),
		ApiRejected:                     prometheus.NewDesc("error_api_rejected", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.StartTimestamp
	ch <- self.UpForSeconds

	ch <- self.CurrentSlot
	ch <- self.TransactionsExecuted
	ch <- self.TransactionsFailed
	ch <- self.AverageTransactionsPerMinute
	ch <- self.Instructions

	ch <- self.LastIndexedSlot
	ch <- self.ReceiptsProcessed
	ch <- self.RowsSaved
	ch <- self.DuplicateAttestations

	ch <- self.MessagesPublished

	ch <- self.TransactionsReceived
	ch <- self.CacheHits
	ch <- self.CacheMisses

	// Errors
	ch <- self.BankSignatureVerificationErrors
	ch <- self.BankConflicts
	ch <- self.BankStorageErrors
	ch <- self.BankDuplicateTransactions
	ch <- self.IndexerDecodeErrors
	ch <- self.IndexerDbSaveErrors
	ch <- self.PublisherEncodeErrors
	ch <- self.PublisherErrors
	ch <- self.PublisherPersistentErrors
	ch <- self.ApiRateLimited
	ch <- self.ApiBadRequests
	ch <- self.ApiRejected
}

// Collect implements required collect function for all promehteus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	r := &self.monitor.Report

	ch <- prometheus.MustNewConstMetric(self.StartTimestamp, prometheus.GaugeValue, float64(r.Run.State.StartTimestamp.Load()))
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(r.Run.State.UpForSeconds.Load()))

	ch <- prometheus.MustNewConstMetric(self.CurrentSlot, prometheus.GaugeValue, float64(r.Bank.State.CurrentSlot.Load()))
	ch <- prometheus.MustNewConstMetric(self.TransactionsExecuted, prometheus.CounterValue, float64(r.Bank.State.TransactionsExecuted.Load()))
	ch <- prometheus.MustNewConstMetric(self.TransactionsFailed, prometheus.CounterValue, float64(r.Bank.State.TransactionsFailed.Load()))
	ch <- prometheus.MustNewConstMetric(self.AverageTransactionsPerMinute, prometheus.GaugeValue, r.Bank.State.AverageTransactionsPerMinute.Load())
	ch <- prometheus.MustNewConstMetric(self.Instructions, prometheus.CounterValue, float64(r.Bank.State.InitializeProject.Load()), "initialize_project")
	ch <- prometheus.MustNewConstMetric(self.Instructions, prometheus.CounterValue, float64(r.Bank.State.Contribute.Load()), "contribute")
	ch <- prometheus.MustNewConstMetric(self.Instructions, prometheus.CounterValue, float64(r.Bank.State.ValidateMilestone.Load()), "validate_milestone")
	ch <- prometheus.MustNewConstMetric(self.Instructions, prometheus.CounterValue, float64(r.Bank.State.ReleaseFunds.Load()), "release_funds")
	ch <- prometheus.MustNewConstMetric(self.Instructions, prometheus.CounterValue, float64(r.Bank.State.CancelProject.Load()), "cancel_project")
	ch <- prometheus.MustNewConstMetric(self.Instructions, prometheus.CounterValue, float64(r.Bank.State.Vote.Load()), "vote")

	ch <- prometheus.MustNewConstMetric(self.LastIndexedSlot, prometheus.GaugeValue, float64(r.Indexer.State.LastIndexedSlot.Load()))
	ch <- prometheus.MustNewConstMetric(self.ReceiptsProcessed, prometheus.CounterValue, float64(r.Indexer.State.ReceiptsProcessed.Load()))
	ch <- prometheus.MustNewConstMetric(self.RowsSaved, prometheus.CounterValue, float64(r.Indexer.State.RowsSaved.Load()))
	ch <- prometheus.MustNewConstMetric(self.DuplicateAttestations, prometheus.CounterValue, float64(r.Indexer.State.DuplicateAttestations.Load()))

	ch <- prometheus.MustNewConstMetric(self.MessagesPublished, prometheus.CounterValue, float64(r.RedisPublisher.State.MessagesPublished.Load()))

	ch <- prometheus.MustNewConstMetric(self.TransactionsReceived, prometheus.CounterValue, float64(r.Api.State.TransactionsReceived.Load()))
	ch <- prometheus.MustNewConstMetric(self.CacheHits, prometheus.CounterValue, float64(r.Api.State.CacheHits.Load()))
	ch <- prometheus.MustNewConstMetric(self.CacheMisses, prometheus.CounterValue, float64(r.Api.State.CacheMisses.Load()))

	// Errors
	ch <- prometheus.MustNewConstMetric(self.BankSignatureVerificationErrors, prometheus.CounterValue, float64(r.Bank.Errors.SignatureVerification.Load()))
	ch <- prometheus.MustNewConstMetric(self.BankConflicts, prometheus.CounterValue, float64(r.Bank.Errors.Conflicts.Load()))
	ch <- prometheus.MustNewConstMetric(self.BankStorageErrors, prometheus.CounterValue, float64(r.Bank.Errors.Storage.Load()))
	ch <- prometheus.MustNewConstMetric(self.BankDuplicateTransactions, prometheus.CounterValue, float64(r.Bank.Errors.DuplicateTransactions.Load()))
	ch <- prometheus.MustNewConstMetric(self.IndexerDecodeErrors, prometheus.CounterValue, float64(r.Indexer.Errors.Decode.Load()))
	ch <- prometheus.MustNewConstMetric(self.IndexerDbSaveErrors, prometheus.CounterValue, float64(r.Indexer.Errors.DbSave.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublisherEncodeErrors, prometheus.CounterValue, float64(r.RedisPublisher.Errors.Encode.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublisherErrors, prometheus.CounterValue, float64(r.RedisPublisher.Errors.Publish.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublisherPersistentErrors, prometheus.CounterValue, float64(r.RedisPublisher.Errors.PersistentFailure.Load()))
	ch <- prometheus.MustNewConstMetric(self.ApiRateLimited, prometheus.CounterValue, float64(r.Api.Errors.RateLimited.Load()))
	ch <- prometheus.MustNewConstMetric(self.ApiBadRequests, prometheus.CounterValue, float64(r.Api.Errors.BadRequest.Load()))
	ch <- prometheus.MustNewConstMetric(self.ApiRejected, prometheus.CounterValue, float64(r.Api.Errors.Rejected.Load()))
}
