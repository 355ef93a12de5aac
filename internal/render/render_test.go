package render

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/stackcalc"
)

func TestRenderVerb(t *testing.T) {
	r, err := New("%.2f", "")
	require.NoError(t, err)

	out, err := r.Render(Result{Expression: "1 / 4", Value: 0.25})
	require.NoError(t, err)
	assert.Equal(t, "0.25", out)

	out, err = r.Render(Result{Expression: "2 / 3", Value: big.NewFloat(2.0 / 3.0)})
	require.NoError(t, err)
	assert.Equal(t, "0.67", out)
}

func TestRenderDefaultVerb(t *testing.T) {
	r, err := New("", "")
	require.NoError(t, err)
	assert.Equal(t, "-27", r.Value(-27.0))
}

func TestRenderError(t *testing.T) {
	r, err := New("%g", "")
	require.NoError(t, err)

	_, evalErr := stackcalc.Evaluate("3 / 0")
	require.Error(t, evalErr)
	out, err := r.Render(Result{Expression: "3 / 0", Err: evalErr})
	require.NoError(t, err)
	assert.Equal(t, "division by zero: 3: division by zero", out)
}

func TestRenderTemplate(t *testing.T) {
	r, err := New("%g", "{{#if ok}}{{expression}} = {{result}}{{else}}{{expression}}: {{kind}} ({{error}}){{/if}}")
	require.NoError(t, err)

	out, err := r.Render(Result{Expression: "3 + 5 * 2", Value: 13.0})
	require.NoError(t, err)
	assert.Equal(t, "3 + 5 * 2 = 13", out)

	_, evalErr := stackcalc.Evaluate("3 + (1")
	out, err = r.Render(Result{Expression: "3 + (1", Err: evalErr})
	require.NoError(t, err)
	assert.Equal(t, "3 + (1: mismatched parentheses (5: open parenthesis ( with no close parenthesis)", out)
}

func TestRenderTemplateFixed(t *testing.T) {
	r, err := New("%g", "{{id}}: {{fixed value 3}}")
	require.NoError(t, err)

	out, err := r.Render(Result{ID: "a1", Expression: "1 / 8", Value: 0.125})
	require.NoError(t, err)
	assert.Equal(t, "a1: 0.125", out)

	third := new(big.Float).SetPrec(128).Quo(big.NewFloat(1), big.NewFloat(3))
	out, err = r.Render(Result{ID: "a2", Expression: "1 / 3", Value: third})
	require.NoError(t, err)
	assert.Equal(t, "a2: 0.333", out)
}

func TestRenderBadTemplate(t *testing.T) {
	_, err := New("%g", "{{#if ok}}unclosed")
	assert.ErrorContains(t, err, "failed to compile template")
}
