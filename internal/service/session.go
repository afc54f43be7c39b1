package service

import (
	"fmt"
	"strings"

	"github.com/animerec/animerec-server/internal/catalog"
	domainerrors "github.com/animerec/animerec-server/internal/errors"
)

// State is a session's position in the search flow.
type State int

// Session states.
const (
	StateIdle State = iota
	StateSearching
	StateResultReady
	StateNoResult
)

var stateNames = [...]string{"idle", "searching", "result_ready", "no_result"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", b)
}

// Status describes what a session step produced.
type Status string

// Step statuses.
const (
	StatusRecommended           Status = "recommended"
	StatusNotFound              Status = "not_found"
	StatusNoRecommendation      Status = "no_recommendation"
	StatusNoMoreRecommendations Status = "no_more_recommendations"
)

// Outcome is the result of one session step.
type Outcome struct {
	Status Status     `json:"status"`
	Source catalog.ID `json:"source,omitempty"`
	Item   catalog.ID `json:"item,omitempty"`
}

// Engine is the subset of Recommender a session drives.
type Engine interface {
	Resolve(title string) (catalog.ID, error)
	Recommend(id catalog.ID) (Recommendation, error)
	BuildID() string
}

// TransitionObserver is told about every state change.
type TransitionObserver func(from, to State)

// Session tracks one caller's search and "show another" cycling. A Session is
// a plain value and is not safe for concurrent use.
type Session struct {
	State        State        `json:"state"`
	Query        string       `json:"query,omitempty"`
	Source       catalog.ID   `json:"source,omitempty"`
	BuildID      string       `json:"build_id,omitempty"`
	Closest      catalog.ID   `json:"closest,omitempty"`
	Alternatives []catalog.ID `json:"alternatives,omitempty"`
	Cursor       int          `json:"cursor"`

	observer TransitionObserver
}

// NewSession returns an idle session. observer may be nil.
func NewSession(observer TransitionObserver) *Session {
	return &Session{observer: observer}
}

// Observe replaces the transition observer.
func (s *Session) Observe(observer TransitionObserver) {
	s.observer = observer
}

func (s *Session) transition(to State) {
	from := s.State
	s.State = to
	if from != to && s.observer != nil {
		s.observer(from, to)
	}
}

// Submit resolves title and computes its recommendations. The closest item is
// returned and the alternatives are cached for Another.
func (s *Session) Submit(e Engine, title string) (Outcome, error) {
	if strings.TrimSpace(title) == "" {
		return Outcome{}, domainerrors.Validation("title is required")
	}
	s.transition(StateSearching)
	s.Query = title

	id, err := e.Resolve(title)
	if err != nil {
		return s.fail(err)
	}
	if err := s.load(e, id); err != nil {
		return s.fail(err)
	}

	if s.Closest == "" {
		s.transition(StateNoResult)
		return Outcome{Status: StatusNoRecommendation, Source: s.Source}, nil
	}
	s.transition(StateResultReady)
	return Outcome{Status: StatusRecommended, Source: s.Source, Item: s.Closest}, nil
}

// Another returns the next cached alternative, wrapping after the last one.
// A non-empty title that resolves to a different item, or a rebuilt graph,
// replaces the cached list first.
func (s *Session) Another(e Engine, title string) (Outcome, error) {
	title = strings.TrimSpace(title)
	if title == "" && s.Source == "" {
		return Outcome{}, domainerrors.Validation("no title has been submitted")
	}
	s.transition(StateSearching)

	id := s.Source
	if title != "" {
		resolved, err := e.Resolve(title)
		if err != nil {
			return s.fail(err)
		}
		id = resolved
		s.Query = title
	}

	// The cached list is reused unless the item changed or the graph was
	// rebuilt since it was computed.
	if id != s.Source || e.BuildID() != s.BuildID {
		if err := s.load(e, id); err != nil {
			return s.fail(err)
		}
	}

	if len(s.Alternatives) == 0 {
		s.transition(StateNoResult)
		return Outcome{Status: StatusNoMoreRecommendations, Source: s.Source}, nil
	}
	if s.Cursor >= len(s.Alternatives) {
		s.Cursor = 0
	}
	item := s.Alternatives[s.Cursor]
	s.Cursor = (s.Cursor + 1) % len(s.Alternatives)

	s.transition(StateResultReady)
	return Outcome{Status: StatusRecommended, Source: s.Source, Item: item}, nil
}

// Reset clears the session back to Idle.
func (s *Session) Reset() {
	observer := s.observer
	s.transition(StateIdle)
	*s = Session{observer: observer}
}

func (s *Session) load(e Engine, id catalog.ID) error {
	rec, err := e.Recommend(id)
	if err != nil {
		return err
	}
	s.apply(rec)
	return nil
}

func (s *Session) apply(rec Recommendation) {
	s.Source = rec.Source
	s.BuildID = rec.BuildID
	s.Closest = ""
	if rec.Found {
		s.Closest = rec.Closest
	}
	s.Alternatives = rec.Alternatives
	s.Cursor = 0
}

// fail moves to NoResult. Not-found errors become an outcome; anything else
// is returned.
func (s *Session) fail(err error) (Outcome, error) {
	s.Source, s.BuildID, s.Closest, s.Alternatives, s.Cursor = "", "", "", nil, 0
	s.transition(StateNoResult)
	if domainerrors.Is(err, domainerrors.ErrNotFound) {
		return Outcome{Status: StatusNotFound}, nil
	}
	return Outcome{}, err
}
