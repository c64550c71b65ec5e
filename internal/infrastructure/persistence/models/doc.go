// Package models contains the GORM persistence models behind the ledger and
// sync repositories. Domain types carry no ORM tags; each model converts to
// and from its domain counterpart.
//
//   - ledger.go: documents, document lines and sequence counters
//   - sync.go: sync runs and batches, article mappings and parties
package models

// AllModels lists every model for AutoMigrate in tests and development.
func AllModels() []any {
	return []any{
		&DocumentModel{},
		&DocumentLineModel{},
		&CounterModel{},
		&SyncRunModel{},
		&SyncBatchModel{},
		&ArticleMappingModel{},
		&PartyModel{},
	}
}
