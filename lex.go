package stackcalc

import "unicode/utf8"

// Operators contains the characters which are binary operators.
const Operators = "+-*/"

// charKind is the class of a single character of an expression.
type charKind int8

const (
	charInvalid charKind = iota
	// charNum is a digit or decimal point.
	charNum
	// charOp is one of Operators.
	charOp
	// charOpen is an open parenthesis.
	charOpen
	// charClose is a close parenthesis.
	charClose
)

func classify(c byte) charKind {
	switch c {
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '.':
		return charNum
	case '+', '-', '*', '/':
		return charOp
	case '(':
		return charOpen
	case ')':
		return charClose
	default:
		return charInvalid
	}
}

// isSpace reports whether r is ASCII whitespace. Other Unicode spaces are
// invalid characters.
func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	default:
		return false
	}
}

// source is an expression with whitespace removed. col and gap are parallel
// to the bytes of text.
type source struct {
	text string
	// col is the 1-based rune column of each byte in the original input.
	col []int
	// gap records whether whitespace immediately preceded each byte in the
	// original input. Numeric literals never extend across a gap.
	gap []bool
	// end is the column just past the end of the source.
	end int
}

// strip removes whitespace from s.
func strip(s string) source {
	var (
		b   = make([]byte, 0, len(s))
		col = make([]int, 0, len(s))
		gap = make([]bool, 0, len(s))
		ws  bool
		n   int
	)
	for i := 0; i < len(s); {
		r, sz := utf8.DecodeRuneInString(s[i:])
		n++
		if isSpace(r) {
			ws = true
			i += sz
			continue
		}
		for k := 0; k < sz; k++ {
			b = append(b, s[i+k])
			col = append(col, n)
			gap = append(gap, ws && k == 0)
		}
		ws = false
		i += sz
	}
	return source{text: string(b), col: col, gap: gap, end: n + 1}
}

// slice returns the part of src between byte offsets i and j.
func (src source) slice(i, j int) source {
	end := src.end
	if j < len(src.text) {
		end = src.col[j]
	}
	return source{text: src.text[i:j], col: src.col[i:j], gap: src.gap[i:j], end: end}
}

// scanNum returns the end of the numeric literal starting at i. The literal
// is the maximal run of digits and decimal points not broken by whitespace.
func (src source) scanNum(i int) int {
	j := i + 1
	for j < len(src.text) && classify(src.text[j]) == charNum && !src.gap[j] {
		j++
	}
	return j
}

// matchParen returns the offset of the close parenthesis matching the open
// parenthesis at i, or -1 if the input ends first.
func (src source) matchParen(i int) int {
	depth := 0
	for j := i; j < len(src.text); j++ {
		switch src.text[j] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// balance checks that every parenthesis in src has a match. A close
// parenthesis with no open one is reported before an open parenthesis that is
// never closed; of several unclosed ones, the leftmost is reported.
func (src source) balance() error {
	var open []int
	for i := 0; i < len(src.text); i++ {
		switch src.text[i] {
		case '(':
			open = append(open, i)
		case ')':
			if len(open) == 0 {
				return &BracketError{Col: src.col[i], Right: ")"}
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		return &BracketError{Col: src.col[open[0]], Left: "("}
	}
	return nil
}

// charAt returns the full character starting at byte offset i, for error
// messages.
func (src source) charAt(i int) string {
	_, sz := utf8.DecodeRuneInString(src.text[i:])
	return src.text[i : i+sz]
}
