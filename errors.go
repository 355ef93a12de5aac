package stackcalc

import (
	"errors"
	"strconv"
)

// Sentinel errors for each failure kind. Every error returned by evaluation
// matches exactly one of these with errors.Is.
var (
	ErrInvalidExpression     = errors.New("invalid expression")
	ErrMismatchedParentheses = errors.New("mismatched parentheses")
	ErrDivisionByZero        = errors.New("division by zero")
	ErrTooDeep               = errors.New("nesting too deep")
)

// SyntaxError indicates a malformed expression: an invalid character, an
// unparsable number, or a missing operand or operator. It implements
// InputError and matches ErrInvalidExpression.
type SyntaxError struct {
	// Col is the position of the offending token.
	Col int
	// Text is the offending token. It may be empty.
	Text string
	// Reason describes what is wrong with the token.
	Reason string
}

func (err *SyntaxError) Error() string {
	if err.Text == "" {
		return errpos(err.Col, err.Reason)
	}
	return errpos(err.Col, err.Reason+" "+strconv.Quote(err.Text))
}

func (err *SyntaxError) Pos() int {
	return err.Col
}

func (err *SyntaxError) Is(target error) bool {
	return target == ErrInvalidExpression
}

// BracketError indicates unbalanced parentheses. It implements InputError and
// matches ErrMismatchedParentheses.
type BracketError struct {
	// Col is the position of the unmatched parenthesis.
	Col int
	// Left is the unmatched open parenthesis, or empty if the close
	// parenthesis is the unmatched one.
	Left string
	// Right is the unmatched close parenthesis, or empty if the open
	// parenthesis is the unmatched one.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close parenthesis "+err.Right+" with no open parenthesis")
	}
	return errpos(err.Col, "open parenthesis "+err.Left+" with no close parenthesis")
}

func (err *BracketError) Pos() int {
	return err.Col
}

func (err *BracketError) Is(target error) bool {
	return target == ErrMismatchedParentheses
}

// DivisionByZeroError indicates a division whose right operand is zero. It
// implements InputError and matches ErrDivisionByZero.
type DivisionByZeroError struct {
	// Col is the position of the division operator.
	Col int
}

func (err *DivisionByZeroError) Error() string {
	return errpos(err.Col, "division by zero")
}

func (err *DivisionByZeroError) Pos() int {
	return err.Col
}

func (err *DivisionByZeroError) Is(target error) bool {
	return target == ErrDivisionByZero
}

// DepthError indicates parentheses nested more deeply than an Evaluator
// allows. It implements InputError and matches ErrTooDeep.
type DepthError struct {
	// Col is the position of the first open parenthesis past the limit.
	Col int
	// Max is the nesting limit.
	Max int
}

func (err *DepthError) Error() string {
	return errpos(err.Col, "parentheses nested deeper than "+strconv.Itoa(err.Max))
}

func (err *DepthError) Pos() int {
	return err.Col
}

func (err *DepthError) Is(target error) bool {
	return target == ErrTooDeep
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*SyntaxError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*DivisionByZeroError)(nil)
	_ InputError = (*DepthError)(nil)
)

// Kind returns a short description of the failure kind of err, or the empty
// string if err did not come from evaluation.
func Kind(err error) string {
	for _, k := range []error{ErrInvalidExpression, ErrMismatchedParentheses, ErrDivisionByZero, ErrTooDeep} {
		if errors.Is(err, k) {
			return k.Error()
		}
	}
	return ""
}
