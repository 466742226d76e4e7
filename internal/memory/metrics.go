package memory

// Metrics receives placement events. Implementations must be cheap; they are
// called on the dispatch loop.
type Metrics interface {
	Placed(source string)
	Verified(outcome string)
	Saved(kind string)
	StoreError(op string)
	MatchScore(score float64)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) Placed(string) {}
func (NopMetrics) Verified(string) {}
func (NopMetrics) Saved(string) {}
func (NopMetrics) StoreError(string) {}
func (NopMetrics) MatchScore(float64) {}
