// Package config provides configuration for the stackcalc command and its
// Redis worker.
//
// Values come from three layers, each overriding the last: built-in defaults,
// an optional TOML or YAML file, and STACKCALC_* environment variables. The
// command applies its flags on top and validates the result.
//
// Example usage:
//
//	cfg, err := config.Load("stackcalc.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg)
package config
