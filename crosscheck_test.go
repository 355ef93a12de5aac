package stackcalc_test

import (
	"errors"
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/google/cel-go/cel"

	"github.com/zephyrtronium/stackcalc"
)

// exprgen generates random well-formed expressions along with the same
// expression written in CEL, where every literal is a double.
type exprgen struct {
	rng *rand.Rand
}

func (g *exprgen) num() (src, celsrc string) {
	n := strconv.Itoa(g.rng.Intn(100))
	d := strconv.Itoa(g.rng.Intn(100))
	switch g.rng.Intn(5) {
	case 0:
		return n + "." + d, n + "." + d
	case 1:
		return "." + d, "0." + d
	case 2:
		return n + ".", n + ".0"
	default:
		return n, n + ".0"
	}
}

// expr returns an expression and the precedence of its outermost operator,
// 3 for a number or parenthesized group.
func (g *exprgen) expr(depth int) (src, celsrc string, prec int) {
	if depth == 0 || g.rng.Intn(4) == 0 {
		src, celsrc = g.num()
		return src, celsrc, 3
	}
	op := "+-*/"[g.rng.Intn(4)]
	p := 1
	if op == '*' || op == '/' {
		p = 2
	}
	ls, lc, lp := g.expr(depth - 1)
	rs, rc, rp := g.expr(depth - 1)
	// Left operands need parentheses only if they bind more loosely. Right
	// operands also need them at equal precedence because operators group
	// left to right.
	if lp < p || g.rng.Intn(8) == 0 {
		ls, lc = "("+ls+")", "("+lc+")"
	}
	if rp <= p || g.rng.Intn(8) == 0 {
		rs, rc = "( "+rs+" )", "("+rc+")"
	}
	sp := ""
	if g.rng.Intn(2) == 0 {
		sp = " "
	}
	return ls + sp + string(op) + sp + rs, lc + " " + string(op) + " " + rc, p
}

func TestCrossCheckCEL(t *testing.T) {
	env, err := cel.NewEnv()
	if err != nil {
		t.Fatal(err)
	}
	g := exprgen{rng: rand.New(rand.NewSource(1))}
	checked := 0
	for i := 0; i < 500; i++ {
		src, celsrc, _ := g.expr(5)
		r, err := stackcalc.Evaluate(src)
		if errors.Is(err, stackcalc.ErrDivisionByZero) {
			// CEL gives an infinity or NaN instead.
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", src, err)
			continue
		}
		ast, iss := env.Compile(celsrc)
		if iss.Err() != nil {
			t.Fatalf("CEL could not compile %q: %v", celsrc, iss.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			t.Fatalf("CEL could not plan %q: %v", celsrc, err)
		}
		out, _, err := prg.Eval(map[string]interface{}{})
		if err != nil {
			t.Fatalf("CEL could not evaluate %q: %v", celsrc, err)
		}
		want, ok := out.Value().(float64)
		if !ok {
			t.Fatalf("CEL result of %q is %T", celsrc, out.Value())
		}
		if r != want && !(math.IsNaN(r) && math.IsNaN(want)) {
			t.Errorf("%q: want %g (CEL %q), got %g", src, want, celsrc, r)
		}
		checked++
	}
	if checked < 250 {
		t.Errorf("only %d of 500 expressions were checked", checked)
	}
}
