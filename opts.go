package stackcalc

// DefaultMaxDepth is the default limit on parenthesis nesting.
const DefaultMaxDepth = 1000

// Option is an option used when creating an Evaluator.
type Option interface {
	option()
}

type (
	depthopt int
	precopt  uint
)

func (depthopt) option() {}
func (precopt) option()  {}

// MaxDepth limits how deeply parentheses may nest. Deeper expressions fail
// with a DepthError. A limit of zero or less disables the check, in which
// case very deep nesting is bounded only by the goroutine stack.
func MaxDepth(n int) Option {
	if n < 0 {
		n = 0
	}
	return depthopt(n)
}

// Prec sets the precision in bits of arbitrary-precision evaluation. Panics
// if prec is zero or exceeds big.MaxPrec.
func Prec(prec uint) Option {
	if prec == 0 || prec > maxPrec {
		panic("stackcalc: invalid precision")
	}
	return precopt(prec)
}
