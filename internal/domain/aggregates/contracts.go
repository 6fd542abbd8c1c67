package aggregates

// WriteTxOwnership says who opens the transaction around a write.
type WriteTxOwnership string

const (
	// WriteTxOwnedByAggregate: every aggregate write runs in its own transaction.
	WriteTxOwnedByAggregate WriteTxOwnership = "aggregate_owned"
)

// ConcurrencyPolicy says how concurrent writers to one record are resolved.
type ConcurrencyPolicy string

const (
	// ConcurrencyCompareAndSet rejects a write whose version is stale.
	ConcurrencyCompareAndSet ConcurrencyPolicy = "compare_and_set"
)

// Contract describes what an aggregate promises its callers.
type Contract struct {
	Name             string
	WriteTxOwnership WriteTxOwnership
	Concurrency      ConcurrencyPolicy
	Operations       []string
}

// Aggregate is implemented by every write owner.
type Aggregate interface {
	Contract() Contract
}

func (c Contract) RequiresAggregateOwnedTx() bool {
	return c.WriteTxOwnership == WriteTxOwnedByAggregate
}

// Owns reports whether op is one of the aggregate's operation names.
func (c Contract) Owns(op string) bool {
	for _, known := range c.Operations {
		if known == op {
			return true
		}
	}
	return false
}
