package draw

import (
	"errors"
	"fmt"
	"strings"
)

// Names of the two lists, as used in field errors and query parameters.
const (
	ListParticipants = "participants"
	ListOutcomes     = "outcomes"
)

// Characters that may not appear in any entry.
const disallowedCharacters = "!@#$%^&*()+=._,-"

var (
	ErrRequired                     = errors.New("this field is required")
	ErrSpecialCharacter             = errors.New("special characters are not allowed")
	ErrTooFew                       = errors.New("list has too few entries")
	ErrTooMany                      = errors.New("list has too many entries")
	ErrMoreOutcomesThanParticipants = errors.New("there cannot be more outcomes than participants")
)

// Limits bounds list lengths. A zero maximum means unbounded.
type Limits struct {
	MaxParticipants int
	MaxOutcomes     int
}

// FieldError describes one rejected entry (Index >= 0) or list (Index == -1).
type FieldError struct {
	List    string `json:"list"`
	Index   int    `json:"index"`
	Message string `json:"message"`

	Err error `json:"-"`
}

func (e *FieldError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.List, e.Message)
	}
	return fmt.Sprintf("%s[%d]: %s", e.List, e.Index, e.Message)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

type ValidationErrors []*FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes every field error to errors.Is and errors.As.
func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, e := range v {
		errs[i] = e
	}
	return errs
}

// ValidateEntry checks a single entry. Whitespace-only entries count as empty.
func ValidateEntry(value string) error {
	if strings.TrimSpace(value) == "" {
		return ErrRequired
	}
	if strings.ContainsAny(value, disallowedCharacters) {
		return ErrSpecialCharacter
	}
	return nil
}

// Validate checks both lists against the entry rules and limits. It returns
// nil or a ValidationErrors holding every problem found.
func Validate(participants, outcomes []string, limits Limits, mode Mode) error {
	var errs ValidationErrors

	errs = append(errs, validateEntries(ListParticipants, participants)...)
	errs = append(errs, validateEntries(ListOutcomes, outcomes)...)

	switch {
	case len(participants) < 1:
		errs = append(errs, listError(ListParticipants, ErrTooFew, "At least one participant is required."))
	case limits.MaxParticipants > 0 && len(participants) > limits.MaxParticipants:
		errs = append(errs, listError(ListParticipants, ErrTooMany,
			fmt.Sprintf("At most %d participants are allowed.", limits.MaxParticipants)))
	}

	switch {
	case len(outcomes) < 1:
		errs = append(errs, listError(ListOutcomes, ErrTooFew, "At least one outcome is required."))
	case limits.MaxOutcomes > 0 && len(outcomes) > limits.MaxOutcomes:
		errs = append(errs, listError(ListOutcomes, ErrTooMany,
			fmt.Sprintf("At most %d outcomes are allowed.", limits.MaxOutcomes)))
	case mode == Paired && len(outcomes) > len(participants):
		errs = append(errs, listError(ListOutcomes, ErrMoreOutcomesThanParticipants,
			"There cannot be more outcomes than participants."))
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateEntries(list string, values []string) []*FieldError {
	var errs []*FieldError

	for i, v := range values {
		err := ValidateEntry(v)
		if err == nil {
			continue
		}

		msg := "This field is required."
		if errors.Is(err, ErrSpecialCharacter) {
			msg = "Special characters are not allowed."
		}

		errs = append(errs, &FieldError{List: list, Index: i, Message: msg, Err: err})
	}

	return errs
}

func listError(list string, err error, msg string) *FieldError {
	return &FieldError{List: list, Index: -1, Message: msg, Err: err}
}
