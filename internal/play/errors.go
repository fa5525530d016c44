package play

import (
	"errors"
	"fmt"
)

// Error codes for play parsing.
const (
	// ErrCodeEmpty: nothing left after stripping annotation characters.
	ErrCodeEmpty = "E_EMPTY_PLAY"
	// ErrCodeMultiplePlateAppearances: two batter outcomes joined in one play.
	ErrCodeMultiplePlateAppearances = "E_MULTIPLE_PLATE_APPEARANCES"
	// ErrCodeUnrecognized: a token that matches no known form.
	ErrCodeUnrecognized = "E_UNRECOGNIZED"
	// ErrCodeBackwardAdvance: an advance whose destination precedes its origin.
	ErrCodeBackwardAdvance = "E_BACKWARD_ADVANCE"
	// ErrCodeConflict: two parts of the play disagree about an out.
	ErrCodeConflict = "E_CONFLICT"
)

// ParseError reports a play string that cannot be turned into a descriptor.
type ParseError struct {
	Code    string
	Input   string // full play string
	Token   string // offending substring
	Message string
}

func (e *ParseError) Error() string {
	if e.Token != "" && e.Token != e.Input {
		return fmt.Sprintf("[%s] %s: %q in %q", e.Code, e.Message, e.Token, e.Input)
	}
	return fmt.Sprintf("[%s] %s: %q", e.Code, e.Message, e.Input)
}

// IsParseError reports whether err is (or wraps) a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Warning is a recoverable problem inside an otherwise usable descriptor.
type Warning struct {
	Code    string
	Token   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s: %q", w.Code, w.Message, w.Token)
}

func unrecognized(token, where string) Warning {
	return Warning{Code: ErrCodeUnrecognized, Token: token, Message: "unrecognized " + where}
}
