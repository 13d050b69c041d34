package app

import "fmt"

// BatchFailure identifies one item that failed inside a batch operation.
type BatchFailure struct {
	Identity string
	Message  string
}

// BatchResult is the structured outcome of a batch operation. Partial
// success is the norm: one failing item never aborts the rest, it is
// recorded here instead.
type BatchResult struct {
	Succeeded int
	Created   int // newly materialized rows/issues; 0 on a pure re-run
	Failed    []BatchFailure
}

func (r *BatchResult) addFailure(identity string, err error) {
	r.Failed = append(r.Failed, BatchFailure{Identity: identity, Message: err.Error()})
}

func (r BatchResult) String() string {
	return fmt.Sprintf("succeeded=%d created=%d failed=%d", r.Succeeded, r.Created, len(r.Failed))
}

// ReconcileSummary is the combined outcome of one full reconciliation
// pass, in execution order: orphan repair first so repaired schedules
// re-qualify for issue generation within the same pass.
type ReconcileSummary struct {
	OrphansReset    BatchResult
	IssuesGenerated BatchResult
	CompletedSynced BatchResult
	OverdueMarked   int64
}
