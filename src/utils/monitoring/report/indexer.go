package report

import (
	"go.uber.org/atomic"
)

type IndexerErrors struct {
	Decode atomic.Uint64 `json:"decode"`
	DbSave atomic.Uint64 `json:"db_save"`
}

type IndexerState struct {
	LastIndexedSlot       atomic.Uint64 `json:"last_indexed_slot"`
	ReceiptsProcessed     atomic.Uint64 `json:"receipts_processed"`
	RowsSaved             atomic.Uint64 `json:"rows_saved"`
	DuplicateAttestations atomic.Uint64 `json:"duplicate_attestations"`
}

type IndexerReport struct {
	State  IndexerState  `json:"state"`
	Errors IndexerErrors `json:"errors"`
}
