package sync

import "time"

type Outcome string

const (
	OutcomeUpdated Outcome = "updated"
	OutcomeSkipped Outcome = "skipped"
	OutcomeDryRun  Outcome = "dry-run"
	OutcomeError   Outcome = "error"
)

// Result is the per-user outcome of one pipeline pass.
type Result struct {
	UserID     string
	DomainName string
	Outcome    Outcome
	Detail     string
}

// Report aggregates a full run. It backs both the summary log line and the
// CSV export.
type Report struct {
	Results []Result
	Elapsed time.Duration
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
}

func (r *Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}
