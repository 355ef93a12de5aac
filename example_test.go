package stackcalc_test

import (
	"fmt"

	"github.com/zephyrtronium/stackcalc"
)

func ExampleEvaluate() {
	r, err := stackcalc.Evaluate("3 + 5 * (2 - 8)")
	fmt.Println(r, err)

	_, err = stackcalc.Evaluate("3 + (5 * 2")
	fmt.Println(stackcalc.Kind(err))
	fmt.Println(err)

	// Output:
	// -27 <nil>
	// mismatched parentheses
	// 5: open parenthesis ( with no close parenthesis
}

func ExampleEvaluateBig() {
	r, _ := stackcalc.EvaluateBig("1 / 3", 128)
	fmt.Println(r.Text('g', 30))

	// Output:
	// 0.333333333333333333333333333333
}
