package stackcalc

import (
	"errors"
	"math/big"
	"strconv"
)

// Evaluator evaluates expressions under a fixed configuration. It holds no
// state between evaluations, so it is safe to use an Evaluator concurrently.
type Evaluator struct {
	max  int
	prec uint
}

// New creates an Evaluator. Without options, the nesting limit is
// DefaultMaxDepth and the precision of EvalBig is 64 bits.
func New(opts ...Option) *Evaluator {
	e := Evaluator{max: DefaultMaxDepth, prec: 64}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case depthopt:
			e.max = int(opt)
		case precopt:
			e.prec = uint(opt)
		default:
			panic("stackcalc: unknown option type")
		}
	}
	return &e
}

// Eval evaluates an expression in float64 arithmetic.
func (e *Evaluator) Eval(expr string) (float64, error) {
	c := core[float64]{num: parseFloat, apply: apply, max: e.max}
	return c.run(expr)
}

// EvalBig evaluates an expression with arbitrary-precision arithmetic at the
// evaluator's precision.
func (e *Evaluator) EvalBig(expr string) (*big.Float, error) {
	return bigCore(e.prec, e.max).run(expr)
}

// MaxDepth returns the nesting limit of the evaluator, or 0 if there is none.
func (e *Evaluator) MaxDepth() int {
	return e.max
}

// Prec returns the precision EvalBig uses.
func (e *Evaluator) Prec() uint {
	return e.prec
}

// Evaluate is a shortcut to evaluate an expression with default options.
func Evaluate(expr string) (float64, error) {
	return New().Eval(expr)
}

// precedence returns the binding strength of an operator. Higher binds
// tighter. Non-operators have precedence -1.
func precedence(op byte) int {
	switch op {
	case '+', '-':
		return 1
	case '*', '/':
		return 2
	default:
		return -1
	}
}

// apply computes left op right. The only error is ErrDivisionByZero.
func apply(op byte, left, right float64) (float64, error) {
	switch op {
	case '+':
		return left + right, nil
	case '-':
		return left - right, nil
	case '*':
		return left * right, nil
	case '/':
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		return left / right, nil
	default:
		panic("stackcalc: unknown operator " + strconv.QuoteRune(rune(op)))
	}
}

func parseFloat(text string) (float64, bool) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}

// core is the two-stack evaluator, generic over the type of values.
type core[T any] struct {
	// num parses a numeric literal. It reports false if the literal is
	// malformed.
	num func(text string) (T, bool)
	// apply applies a binary operator. It returns an error only for division
	// by zero.
	apply func(op byte, left, right T) (T, error)
	// max is the nesting limit, or 0 for no limit.
	max int
}

// operator is an operator on the operator stack.
type operator struct {
	op  byte
	col int
}

// stacks holds the pending operands and operators of one nesting level.
type stacks[T any] struct {
	vals []T
	ops  []operator
}

func (s *stacks[T]) push(v T) {
	s.vals = append(s.vals, v)
}

func (s *stacks[T]) pushOp(op operator) {
	s.ops = append(s.ops, op)
}

func (s *stacks[T]) topOp() operator {
	return s.ops[len(s.ops)-1]
}

// reduce pops the top operator and applies it to the top two operands.
func (s *stacks[T]) reduce(apply func(byte, T, T) (T, error)) error {
	op := s.ops[len(s.ops)-1]
	s.ops = s.ops[:len(s.ops)-1]
	if len(s.vals) < 2 {
		return &SyntaxError{Col: op.col, Text: string(op.op), Reason: "missing operand for"}
	}
	r := s.vals[len(s.vals)-1]
	l := s.vals[len(s.vals)-2]
	s.vals = s.vals[:len(s.vals)-2]
	v, err := apply(op.op, l, r)
	if err != nil {
		return &DivisionByZeroError{Col: op.col}
	}
	s.vals = append(s.vals, v)
	return nil
}

func (c *core[T]) run(expr string) (T, error) {
	var zero T
	src := strip(expr)
	if src.text == "" {
		return zero, &SyntaxError{Col: 1, Reason: "no expression"}
	}
	// Unbalanced parentheses take priority over any other fault.
	if err := src.balance(); err != nil {
		return zero, err
	}
	return c.eval(src, 0)
}

// eval evaluates one nesting level. Parenthesized groups are evaluated by
// recursive calls with depth+1.
func (c *core[T]) eval(src source, depth int) (T, error) {
	var (
		zero T
		s    stacks[T]
		// operand tracks whether the last token was an operand, to reject
		// adjacent operands like "3 5" or "2(3)".
		operand bool
	)
	for i := 0; i < len(src.text); {
		ch := src.text[i]
		switch classify(ch) {
		case charNum:
			j := src.scanNum(i)
			if operand {
				return zero, &SyntaxError{Col: src.col[i], Text: src.text[i:j], Reason: "missing operator before"}
			}
			v, ok := c.num(src.text[i:j])
			if !ok {
				return zero, &SyntaxError{Col: src.col[i], Text: src.text[i:j], Reason: "invalid number"}
			}
			s.push(v)
			operand = true
			i = j
		case charOpen:
			j := src.matchParen(i)
			if j < 0 {
				return zero, &BracketError{Col: src.col[i], Left: "("}
			}
			if operand {
				return zero, &SyntaxError{Col: src.col[i], Text: "(", Reason: "missing operator before"}
			}
			if j == i+1 {
				return zero, &SyntaxError{Col: src.col[i], Text: "()", Reason: "empty parentheses"}
			}
			if c.max > 0 && depth >= c.max {
				return zero, &DepthError{Col: src.col[i], Max: c.max}
			}
			v, err := c.eval(src.slice(i+1, j), depth+1)
			if err != nil {
				return zero, err
			}
			s.push(v)
			operand = true
			i = j + 1
		case charOp:
			p := precedence(ch)
			for len(s.ops) > 0 && precedence(s.topOp().op) >= p {
				if err := s.reduce(c.apply); err != nil {
					return zero, err
				}
			}
			s.pushOp(operator{op: ch, col: src.col[i]})
			operand = false
			i++
		case charClose:
			return zero, &BracketError{Col: src.col[i], Right: ")"}
		default:
			return zero, &SyntaxError{Col: src.col[i], Text: src.charAt(i), Reason: "invalid character"}
		}
	}
	for len(s.ops) > 0 {
		if err := s.reduce(c.apply); err != nil {
			return zero, err
		}
	}
	if len(s.vals) != 1 {
		return zero, &SyntaxError{Col: src.end, Reason: "malformed expression"}
	}
	return s.vals[0], nil
}
