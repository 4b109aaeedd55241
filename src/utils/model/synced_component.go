package model

type SyncedComponent string

const (
	SyncedComponentIndexer   SyncedComponent = "Indexer"
	SyncedComponentPublisher SyncedComponent = "Publisher"
)
