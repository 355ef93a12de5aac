// Package stackcalc evaluates infix arithmetic expressions.
//
// An expression is made of decimal numbers, the four binary operators
// + - * /, and parentheses. Multiplication and division bind tighter than
// addition and subtraction, and operators of equal precedence group left to
// right, so "3 - 5 + 1" is -1 and "3 + 5 * (2 - 8)" is -27. ASCII whitespace
// is ignored except that it separates numbers: "3 5" is an error, not 35.
// There is no unary minus; write "0 - 5" instead of "-5".
//
// Evaluation uses an operand stack and an operator stack per nesting level
// and evaluates each parenthesized group with a recursive call. Every failure
// is an InputError carrying the column of the offending token, and matches
// one of ErrInvalidExpression, ErrMismatchedParentheses, ErrDivisionByZero,
// or ErrTooDeep with errors.Is. Unbalanced parentheses are reported before
// any other fault.
//
package stackcalc
