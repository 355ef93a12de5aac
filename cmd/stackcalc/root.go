package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zephyrtronium/stackcalc"
	"github.com/zephyrtronium/stackcalc/internal/config"
	"github.com/zephyrtronium/stackcalc/internal/render"
)

// errEvalFailed is returned from the root command when at least one
// expression failed to evaluate.
var errEvalFailed = errors.New("evaluation failed")

// options holds flag values shared by all commands.
type options struct {
	cfgFile  string
	logLevel string

	inname   string
	verb     string
	template string
	lines    bool
	prec     uint
	maxDepth int
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "stackcalc [expression...]",
		Short: "Evaluate infix arithmetic expressions",
		Long: `stackcalc evaluates arithmetic expressions over + - * / and parentheses.

Each argument is one expression. With no arguments, the expression is read
from --in or stdin; with -n, every non-blank input line is an expression.

Configuration is read from --config (TOML or YAML), then STACKCALC_*
environment variables, then flags.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, &opts, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "config file (default $"+config.EnvConfigFile+")")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.IntVar(&opts.maxDepth, "max-depth", stackcalc.DefaultMaxDepth, "maximum parenthesis nesting")

	f := cmd.Flags()
	f.StringVar(&opts.inname, "in", "", "input file (default stdin if no args given)")
	f.StringVar(&opts.verb, "fmt", "%g", "result formatting string")
	f.StringVar(&opts.template, "template", "", "Handlebars template for each result, overriding --fmt")
	f.BoolVarP(&opts.lines, "lines", "n", false, "parse separate input lines as separate expressions")
	f.UintVarP(&opts.prec, "prec", "p", 64, "precision of calculations in bits; above 64 uses arbitrary precision")

	cmd.AddCommand(newWorkerCmd(&opts), newVersionCmd())
	return cmd
}

// loadConfig loads the configuration and applies flags the user set.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = opts.maxDepth
	}
	if flags.Changed("fmt") {
		cfg.Format = opts.verb
	}
	if flags.Changed("template") {
		cfg.Template = opts.template
	}
	if flags.Changed("prec") {
		cfg.Prec = opts.prec
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runEval(cmd *cobra.Command, opts *options, args []string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Debug("configuration loaded", zap.Stringer("config", cfg))

	r, err := render.New(cfg.Format, cfg.Template)
	if err != nil {
		return err
	}

	exprs := args
	if len(args) == 0 || opts.inname != "" {
		in, err := readInput(cmd, opts.inname, opts.lines)
		if err != nil {
			return err
		}
		exprs = append(exprs, in...)
	}

	e := stackcalc.New(stackcalc.MaxDepth(cfg.MaxDepth), stackcalc.Prec(cfg.Prec))
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	failed := 0
	for _, src := range exprs {
		res := render.Result{Expression: src}
		if cfg.Prec > 64 {
			var v interface{}
			v, res.Err = e.EvalBig(src)
			if res.Err == nil {
				res.Value = v
			}
		} else {
			var v float64
			v, res.Err = e.Eval(src)
			if res.Err == nil {
				res.Value = v
			}
		}
		out, err := r.Render(res)
		if err != nil {
			return err
		}
		if res.Err != nil {
			failed++
			logger.Debug("evaluation failed",
				zap.String("expression", src),
				zap.String("kind", stackcalc.Kind(res.Err)),
				zap.Error(res.Err),
			)
			if cfg.Template == "" {
				fmt.Fprintln(stderr, out)
				continue
			}
		}
		fmt.Fprintln(stdout, out)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d expressions: %w", failed, len(exprs), errEvalFailed)
	}
	return nil
}

// readInput reads expressions from the named file, or stdin if the name is
// empty or "-". Without lines, the whole input is one expression.
func readInput(cmd *cobra.Command, inname string, lines bool) ([]string, error) {
	var in io.Reader = cmd.InOrStdin()
	if inname != "" && inname != "-" {
		f, err := os.Open(inname)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	if !lines {
		b, err := io.ReadAll(in)
		if err != nil {
			return nil, err
		}
		return []string{strings.TrimSpace(string(b))}, nil
	}
	var exprs []string
	scan := bufio.NewScanner(in)
	scan.Buffer(nil, 1<<20)
	for scan.Scan() {
		if line := strings.TrimSpace(scan.Text()); line != "" {
			exprs = append(exprs, line)
		}
	}
	return exprs, scan.Err()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stackcalc %s (built %s)\n", Version, BuildTime)
		},
	}
}
