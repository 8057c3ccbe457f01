package domain

import "time"

// DeliveryOutcome is the result of a webhook delivery.
type DeliveryOutcome string

// Delivery outcomes.
const (
	DeliveryDelivered          DeliveryOutcome = "delivered"
	DeliveryFailedAfterRetries DeliveryOutcome = "failed_after_retries"
	DeliverySkipped            DeliveryOutcome = "skipped"
)

// CollectorFailure is a diagnostics entry for a source that failed or
// timed out.
type CollectorFailure struct {
	SourceID string
	Reason   string
	Timeout  bool
}

// ResultSet is the terminal artifact of one request. It is never shared
// between requests.
type ResultSet struct {
	RequestID   string
	Query       Query
	Categories  map[Category][]CanonicalRecord
	Summary     string
	GeneratedAt time.Time

	Failures  []CollectorFailure
	Discarded int
	Delivery  DeliveryOutcome
}

// Count returns the number of records across all categories.
func (r *ResultSet) Count() int {
	n := 0
	for _, records := range r.Categories {
		n += len(records)
	}
	return n
}
