// Package aggregates owns the transaction boundaries of journey writes.
//
// Each write composes table-level repos from internal/data/repos inside one
// transaction, applies a pure transition from internal/modules/journey and
// persists it with a version compare-and-set. A lost compare-and-set is a
// conflict; nothing here retries.
package aggregates
