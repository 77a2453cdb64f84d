package progress

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Snapshot is a consistent copy of State. Renderers only ever see snapshots,
// so every backend derives the same numbers.
type Snapshot struct {
	Phase       Phase
	CurrentFile string
	CurrentDir  string
	Processed   int
	Total       int
	Success     int
	Failed      int
	Started     time.Time
	Elapsed     time.Duration
}

// Percent is the completed fraction in [0,1].
func (s Snapshot) Percent() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Processed) / float64(s.Total)
}

// Average is the mean time spent per processed item.
func (s Snapshot) Average() time.Duration {
	if s.Processed == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Processed)
}

// Rate is processed items per second.
func (s Snapshot) Rate() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Processed) / s.Elapsed.Seconds()
}

// ETA is (total - processed) * (elapsed / processed). It is undefined until
// the first item has been processed.
func (s Snapshot) ETA() (time.Duration, bool) {
	if s.Processed == 0 {
		return 0, false
	}
	remaining := s.Total - s.Processed
	if remaining < 0 {
		remaining = 0
	}
	return time.Duration(remaining) * s.Average(), true
}

// ETAString renders ETA for display.
func (s Snapshot) ETAString() string {
	eta, ok := s.ETA()
	if !ok {
		return "calculating..."
	}
	return formatDuration(eta)
}

// Row is one label/value line of the final summary.
type Row struct {
	Label string
	Value string
}

// SummaryRows is the final summary table shared by all renderers.
func SummaryRows(s Snapshot) []Row {
	return []Row{
		{"Total files", humanize.Comma(int64(s.Total))},
		{"Processed", humanize.Comma(int64(s.Processed))},
		{"Successful", humanize.Comma(int64(s.Success))},
		{"Failed", humanize.Comma(int64(s.Failed))},
		{"Elapsed", formatDuration(s.Elapsed)},
		{"Average per file", formatAverage(s.Average())},
		{"Rate", fmt.Sprintf("%.1f files/s", s.Rate())},
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

func formatAverage(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}
