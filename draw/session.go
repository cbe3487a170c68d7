/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package draw

import (
	"errors"
	"slices"
	"time"
)

const DefaultHistorySize = 5

var (
	ErrExhausted    = errors.New("all outcomes have been drawn; the session was reset")
	ErrNoCandidates = errors.New("at least one participant and one outcome are required")
)

// Mode selects how outcomes are assigned on each draw.
type Mode int

const (
	// Paired draws an unused participant and an unused outcome every time.
	Paired Mode = iota

	// ParticipantsOnly draws an unused participant and pairs it with the
	// first outcome, which is never consumed.
	ParticipantsOnly
)

func (m Mode) String() string {
	switch m {
	case ParticipantsOnly:
		return "participants_only"
	default:
		return "paired"
	}
}

// Entry is a single completed draw.
type Entry struct {
	Participant string    `json:"participant"`
	Outcome     string    `json:"outcome"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session holds the lists, consumed indices and recent history of one game.
// It is not safe for concurrent use; each session belongs to a single caller.
type Session struct {
	participants []string
	outcomes     []string

	usedParticipants map[int]bool
	usedOutcomes     map[int]bool

	history     []Entry
	historySize int

	mode Mode
	intn IntN
	now  func() time.Time
}

type Option func(*Session)

// WithIntN sets the random source used for every draw.
func WithIntN(intn IntN) Option {
	return func(s *Session) {
		s.intn = intn
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithHistorySize caps the number of retained entries. Values below 1 keep
// the default.
func WithHistorySize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.historySize = n
		}
	}
}

func WithMode(m Mode) Option {
	return func(s *Session) {
		s.mode = m
	}
}

func NewSession(participants, outcomes []string, opts ...Option) *Session {
	s := &Session{
		participants:     slices.Clone(participants),
		outcomes:         slices.Clone(outcomes),
		usedParticipants: make(map[int]bool),
		usedOutcomes:     make(map[int]bool),
		historySize:      DefaultHistorySize,
		now:              time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.intn = s.intn.orDefault()

	return s
}

// Exhausted reports whether the next draw would reset the session instead of
// selecting. A consumed set at or past the length of its list counts as
// exhausted, so shrinking a list mid-session can never leave it stuck.
func (s *Session) Exhausted() bool {
	if len(s.usedParticipants) >= len(s.participants) {
		return true
	}

	return s.mode == Paired && len(s.usedOutcomes) >= len(s.outcomes)
}

// Draw selects an unused participant and, in Paired mode, an unused outcome.
// When the session is exhausted it is reset and ErrExhausted is returned.
func (s *Session) Draw() (Entry, error) {
	if len(s.participants) == 0 || len(s.outcomes) == 0 {
		return Entry{}, ErrNoCandidates
	}

	if s.Exhausted() {
		s.Reset()

		return Entry{}, ErrExhausted
	}

	p := SelectIndex(s.participants, s.usedParticipants, s.intn)
	s.usedParticipants[p] = true

	o := 0
	if s.mode == Paired {
		o = SelectIndex(s.outcomes, s.usedOutcomes, s.intn)
		s.usedOutcomes[o] = true
	}

	entry := Entry{
		Participant: s.participants[p],
		Outcome:     s.outcomes[o],
		CreatedAt:   s.now(),
	}

	s.history = append([]Entry{entry}, s.history...)
	if len(s.history) > s.historySize {
		s.history = s.history[:s.historySize]
	}

	return entry, nil
}

// Reset clears consumed indices and history, keeping the lists.
func (s *Session) Reset() {
	clear(s.usedParticipants)
	clear(s.usedOutcomes)
	s.history = nil
}

// SetLists replaces the candidate lists. If either list differs from the
// current one the session is reset, since consumed indices would no longer
// refer to the same entries. It reports whether a reset happened.
func (s *Session) SetLists(participants, outcomes []string) bool {
	if slices.Equal(s.participants, participants) && slices.Equal(s.outcomes, outcomes) {
		return false
	}

	s.participants = slices.Clone(participants)
	s.outcomes = slices.Clone(outcomes)
	s.Reset()

	return true
}

// History returns the most recent entries, newest first.
func (s *Session) History() []Entry {
	return slices.Clone(s.history)
}

func (s *Session) Participants() []string {
	return slices.Clone(s.participants)
}

func (s *Session) Outcomes() []string {
	return slices.Clone(s.outcomes)
}

func (s *Session) Mode() Mode {
	return s.mode
}

// Consumed returns the sorted consumed indices of both lists.
func (s *Session) Consumed() (participants, outcomes []int) {
	return sortedKeys(s.usedParticipants), sortedKeys(s.usedOutcomes)
}

func sortedKeys(m map[int]bool) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys
}
