package aggregate

// Budget counts soft record failures for one file; ingestion stops once more
// than Limit failures have been charged
type Budget struct {
	limit int
	used  int
}

// NewBudget returns a budget that tolerates limit failures
func NewBudget(limit int) *Budget { return &Budget{limit: max(limit, 0)} }

// Charge records one failure and reports whether the budget is now exceeded
func (b *Budget) Charge() bool {
	b.used++
	return b.Exceeded()
}

// Exceeded reports whether more than limit failures have been charged
func (b *Budget) Exceeded() bool { return b.used > b.limit }

// Used returns the number of failures charged so far
func (b *Budget) Used() int { return b.used }

// Limit returns the configured tolerance
func (b *Budget) Limit() int { return b.limit }
