package ports

import "context"

// PassSummary is the observable result of one reconciliation pass.
type PassSummary struct {
	Open      int    `json:"open"`      // shipments loaded from the open set
	Updated   int    `json:"updated"`   // genuine transitions applied
	Unchanged int    `json:"unchanged"` // snapshots matching stored state
	Unknown   int    `json:"unknown"`   // snapshots with no local record
	Failed    int    `json:"failed"`    // per-record update errors
	Notified  int    `json:"notified"`  // events handed to the dispatcher
	Err       string `json:"error,omitempty"`
}

// Reconciler runs one complete reconciliation pass. A returned error means
// the pass aborted before applying any update (collect or fetch failure);
// per-record failures are counted in the summary instead.
type Reconciler interface {
	RunPass(ctx context.Context) (PassSummary, error)
}
