package report

type Report struct {
	Run            *RunReport            `json:"run,omitempty"`
	Bank           *BankReport           `json:"bank,omitempty"`
	Indexer        *IndexerReport        `json:"indexer,omitempty"`
	RedisPublisher *RedisPublisherReport `json:"redis_publisher,omitempty"`
	Api            *ApiReport            `json:"api,omitempty"`
}
