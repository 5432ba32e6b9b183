// internal/workers/assessment/benchmark-industry/models.go
package benchmarkindustry

import "venture-risk-workers/internal/models"

type Input struct {
	Industry string `json:"industry"`
}

// Output carries the disclosed view only. A suppressed or empty segment has
// no summary; callers distinguish them by status.
type Output struct {
	Benchmark models.BenchmarkView `json:"benchmark"`
}
