package probe

import (
	"fmt"
	"time"

	"heroprobe/common/linq"
	"heroprobe/heroproto"
)

// StepResult is the outcome of one scripted exchange.
type StepResult struct {
	Name    string
	Sent    []byte
	Reply   *heroproto.ServerResponse
	Latency time.Duration
	Expect  string
	// Mismatch is set when the reply did not match Expect.
	Mismatch error
}

func (r StepResult) Passed() bool {
	return r.Mismatch == nil
}

type Summary struct {
	Passed      int
	Failed      int
	MeanLatency time.Duration
	MaxLatency  time.Duration
}

func Summarize(results []StepResult) Summary {
	latencies := linq.Select(results, func(r StepResult) time.Duration { return r.Latency })
	passed := linq.Count(results, StepResult.Passed)
	return Summary{
		Passed: passed,
		Failed: len(results) - passed,
		MeanLatency: time.Duration(linq.Mean(latencies, func(d time.Duration) float64 {
			return float64(d)
		})),
		MaxLatency: linq.Max(latencies),
	}
}

func (app *Application) printSummary() {
	s := Summarize(app.results)
	fmt.Fprintf(app.out, "\nSummary: %d passed, %d failed (round trip mean %s, max %s)\n",
		s.Passed, s.Failed, s.MeanLatency.Round(time.Microsecond), s.MaxLatency.Round(time.Microsecond))

	failed := linq.Where(app.results, func(r StepResult) bool { return !r.Passed() })
	for _, r := range failed {
		fmt.Fprintf(app.out, "  FAIL %s: %v\n", r.Name, r.Mismatch)
	}
}
