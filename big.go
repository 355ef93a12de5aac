package stackcalc

import (
	"math/big"
	"strconv"
)

const maxPrec = big.MaxPrec

// bigCore creates an evaluator over big.Float values with the given
// precision.
func bigCore(prec uint, limit int) *core[*big.Float] {
	return &core[*big.Float]{
		num: func(text string) (*big.Float, bool) {
			return new(big.Float).SetPrec(prec).SetString(text)
		},
		apply: func(op byte, left, right *big.Float) (*big.Float, error) {
			return applyBig(prec, op, left, right)
		},
		max: limit,
	}
}

// applyBig computes left op right in a new value with precision prec. The
// only error is ErrDivisionByZero.
func applyBig(prec uint, op byte, left, right *big.Float) (*big.Float, error) {
	r := new(big.Float).SetPrec(prec)
	switch op {
	case '+':
		return r.Add(left, right), nil
	case '-':
		return r.Sub(left, right), nil
	case '*':
		return r.Mul(left, right), nil
	case '/':
		if right.Sign() == 0 {
			return nil, ErrDivisionByZero
		}
		return r.Quo(left, right), nil
	default:
		panic("stackcalc: unknown operator " + strconv.QuoteRune(rune(op)))
	}
}

// EvaluateBig is a shortcut to evaluate an expression with arbitrary-precision
// arithmetic at prec bits.
func EvaluateBig(expr string, prec uint) (*big.Float, error) {
	return New(Prec(prec)).EvalBig(expr)
}
