package panel

import (
	"fmt"

	"github.com/okian/artmap/internal/domain/imageurl"
)

// State is the lifecycle stage of the detail panel.
type State int

// Panel states.
const (
	StateEmpty State = iota
	StatePopulated
	StateSummaryLoading
	StateSummaryReady
	StateSummaryError
)

var stateNames = [...]string{"empty", "populated", "summary_loading", "summary_ready", "summary_error"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown panel state %q", b)
}

// Detail is the populated part of the panel.
type Detail struct {
	Name        string              `json:"name"`
	Lifespan    string              `json:"lifespan"`
	BirthPlace  string              `json:"birthPlace"`
	Description string              `json:"description"`
	Image       imageurl.Resolution `json:"image"`
	Caption     string              `json:"caption"`
	ArticleURL  string              `json:"articleUrl,omitempty"`
}

// Summary is the enrichment section of the panel.
type Summary struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// View is a snapshot of the panel. Detail is nil in the empty state, where
// Message holds the prompt or notice to display.
type View struct {
	State      State    `json:"state"`
	Message    string   `json:"message,omitempty"`
	Detail     *Detail  `json:"detail,omitempty"`
	Summary    *Summary `json:"summary,omitempty"`
	Generation uint64   `json:"generation"`
}

// Loading reports whether an enrichment fetch is still outstanding.
func (v View) Loading() bool { return v.State == StateSummaryLoading }
