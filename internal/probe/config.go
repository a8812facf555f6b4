// Package probe drives a running artmap server through the page flow and
// reports what it saw: one session per movement that refreshes, clicks the
// first marker and waits for the panel summary.
package probe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Movements    int           // Movements to probe, 0 for the whole catalog
	Workers      int           // Concurrent sessions
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Panel poll interval while a summary loads
	PollTimeout  time.Duration // Give up waiting for a summary after this
	OutputFile   string        // JSON report path, empty to skip
	Verbose      bool          // Log every movement
}

// Result is what one movement's session observed.
type Result struct {
	Movement    string        `json:"movement"`
	Label       string        `json:"label"`
	Markers     int           `json:"markers"`
	Cached      bool          `json:"cached"`
	Clicked     string        `json:"clicked,omitempty"`
	PanelState  string        `json:"panelState,omitempty"`
	Summary     string        `json:"summary,omitempty"`
	Error       string        `json:"error,omitempty"`
	RefreshTime time.Duration `json:"refreshTime"`
}

// Stats holds run statistics.
type Stats struct {
	MovementsProbed int
	RefreshesOK     int
	RefreshesFailed int
	CachedRefreshes int
	MarkersDrawn    int
	SummariesReady  int
	SummariesFailed int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// Add folds r into the totals.
func (s *Stats) Add(r Result) {
	s.MovementsProbed++
	if r.Error != "" {
		s.RefreshesFailed++
		return
	}
	s.RefreshesOK++
	s.MarkersDrawn += r.Markers
	if r.Cached {
		s.CachedRefreshes++
	}
	switch r.PanelState {
	case "summary_ready":
		s.SummariesReady++
	case "summary_error":
		s.SummariesFailed++
	}
}
