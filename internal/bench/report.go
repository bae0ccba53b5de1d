package bench

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kvellian/tweetbench/internal/tui"
)

// Report collects the results of one benchmark run under a single run ID.
// The same ID is stamped into the bench_run bookkeeping table.
type Report struct {
	RunID   uuid.UUID
	Started time.Time
	Results []*Result
}

// NewReport creates an empty report with a fresh run ID.
func NewReport() *Report {
	return &Report{RunID: uuid.New(), Started: time.Now()}
}

// Add appends one operation result.
func (r *Report) Add(res *Result) {
	r.Results = append(r.Results, res)
}

// Render returns the report as an aligned table. Styling degrades to plain
// text when the output is not a terminal.
func (r *Report) Render() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render(fmt.Sprintf("Benchmark run %s", r.RunID)))
	b.WriteString("\n")

	labelWidth := len("operation")
	for _, res := range r.Results {
		if len(res.Label) > labelWidth {
			labelWidth = len(res.Label)
		}
	}

	header := fmt.Sprintf("%-*s  %5s  %12s  %12s  %12s  %12s",
		labelWidth, "operation", "iters", "total", "mean", "min", "max")
	b.WriteString(tui.HeaderStyle.Render(header))
	b.WriteString("\n")

	for _, res := range r.Results {
		row := fmt.Sprintf("%-*s  %5d  %12s  %12s  %12s  %12s",
			labelWidth, res.Label, len(res.Samples),
			formatDuration(res.Total), formatDuration(res.Mean()),
			formatDuration(res.Min()), formatDuration(res.Max()))
		b.WriteString(tui.CellStyle.Render(row))
		b.WriteString("\n")
	}

	return b.String()
}

// formatDuration rounds to a width that stays readable across the spread of
// sub-millisecond queries and multi-minute loads.
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return d.Round(time.Second).String()
	case d >= time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(time.Microsecond).String()
	}
}
