package report

import (
	"go.uber.org/atomic"
)

type ApiErrors struct {
	RateLimited atomic.Uint64 `json:"rate_limited"`
	BadRequest  atomic.Uint64 `json:"bad_request"`
	Rejected    atomic.Uint64 `json:"rejected"`
}

type ApiState struct {
	TransactionsReceived atomic.Uint64 `json:"transactions_received"`
	CacheHits            atomic.Uint64 `json:"cache_hits"`
	CacheMisses          atomic.Uint64 `json:"cache_misses"`
}

type ApiReport struct {
	State  ApiState  `json:"state"`
	Errors ApiErrors `json:"errors"`
}
