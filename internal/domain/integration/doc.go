// Package integration contains the storefront integration bounded context.
// It describes how the local ledger is mirrored to a remote storefront.
//
// Key concepts:
//   - StockPlatform: port for the storefront's order and product endpoints
//   - ArticleMapping: link between a local article and a storefront product
//   - SyncRun: audit record of one push or pull execution, with batch detail
//   - Party: counterparty read model used to resolve storefront customers
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
