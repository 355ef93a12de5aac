// Package render formats evaluation results, either with a printf verb or
// with a Handlebars template.
package render

import (
	"fmt"
	"math/big"
	"strconv"
	"sync"

	"github.com/aymerick/raymond"

	"github.com/zephyrtronium/stackcalc"
)

// Result is the outcome of evaluating one expression.
type Result struct {
	// ID identifies the request the expression came from, if any.
	ID string
	// Expression is the source text.
	Expression string
	// Value is a float64 or *big.Float. It is nil if Err is not.
	Value interface{}
	// Err is the evaluation error, if any.
	Err error
}

// Renderer formats results. A Renderer is safe for concurrent use.
type Renderer struct {
	verb string
	tmpl *raymond.Template
}

var registerOnce sync.Once

func registerHelpers() {
	// fixed formats a number with a fixed count of decimals:
	// {{fixed value 2}}
	raymond.RegisterHelper("fixed", func(value interface{}, digits interface{}) string {
		n, err := strconv.Atoi(raymond.Str(digits))
		if err != nil || n < 0 {
			n = 0
		}
		switch v := value.(type) {
		case float64:
			return strconv.FormatFloat(v, 'f', n, 64)
		case *big.Float:
			return v.Text('f', n)
		default:
			return raymond.Str(value)
		}
	})
}

// New creates a renderer. If template is non-empty, it is parsed as a
// Handlebars template and used instead of verb.
func New(verb, template string) (*Renderer, error) {
	r := Renderer{verb: verb}
	if template == "" {
		if verb == "" {
			r.verb = "%g"
		}
		return &r, nil
	}
	registerOnce.Do(registerHelpers)
	tmpl, err := raymond.Parse(template)
	if err != nil {
		return nil, fmt.Errorf("failed to compile template: %w", err)
	}
	r.tmpl = tmpl
	return &r, nil
}

// Value formats only the value of a result with the renderer's verb.
func (r *Renderer) Value(v interface{}) string {
	return fmt.Sprintf(r.verb, v)
}

// Render formats a result. Without a template, a successful result is its
// value formatted with the verb and a failed one is "kind: message".
func (r *Renderer) Render(res Result) (string, error) {
	if r.tmpl == nil {
		if res.Err != nil {
			return stackcalc.Kind(res.Err) + ": " + res.Err.Error(), nil
		}
		return r.Value(res.Value), nil
	}
	out, err := r.tmpl.Exec(r.context(res))
	if err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}
	return out, nil
}

// context builds the template context for a result.
func (r *Renderer) context(res Result) map[string]interface{} {
	ctx := map[string]interface{}{
		"id":         res.ID,
		"expression": res.Expression,
		"ok":         res.Err == nil,
	}
	if res.Err != nil {
		ctx["error"] = res.Err.Error()
		ctx["kind"] = stackcalc.Kind(res.Err)
		return ctx
	}
	ctx["value"] = res.Value
	ctx["result"] = r.Value(res.Value)
	return ctx
}
