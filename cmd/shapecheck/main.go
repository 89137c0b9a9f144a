// shapecheck validates documents against a type from a schema file or a
// WIT document.
//
// The input is decoded with a decoder derived from the type; every problem
// is reported with its location and the exit status is 1 when any is found.
// A valid document can be re-encoded in another format (--emit) and its
// numeric content printed as Prometheus metrics (--metrics).
package main

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/typeshape/decode"
	"github.com/wippyai/typeshape/derive"
	"github.com/wippyai/typeshape/metrics"
	"github.com/wippyai/typeshape/wire"
)

type config struct {
	schemaPath  string
	witPath     string
	typeExpr    string
	inputPath   string
	root        string
	format      string
	dialect     string
	emit        string
	namespace   string
	tagField    string
	valueField  string
	enableAny   bool
	metrics     bool
	interactive bool
	verbose     bool
}

func main() {
	code, err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	cfg := &config{}
	flagSet := pflag.NewFlagSet("shapecheck", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&cfg.schemaPath, "schema", "s", "", "schema document (YAML)")
	flagSet.StringVar(&cfg.witPath, "wit", "", "WIT document (.wit, or .json from wasm-tools) to take types from instead of --schema")
	flagSet.StringVarP(&cfg.typeExpr, "type", "t", "", "type expression to check against, e.g. 'list[Order]'")
	flagSet.StringVar(&cfg.inputPath, "input", "-", "document to check, - for stdin")
	flagSet.StringVarP(&cfg.format, "format", "f", "", "input format: json, yaml or cbor (default: from extension, else json)")
	flagSet.StringVar(&cfg.root, "root", "", "dotted path of the subtree to check, e.g. server.http")
	flagSet.StringVar(&cfg.dialect, "dialect", "json", "decoding dialect: json or hocon")
	flagSet.StringVar(&cfg.emit, "emit", "", "re-encode a valid document as json, yaml or cbor")
	flagSet.StringVar(&cfg.namespace, "namespace", "shapecheck", "metric name prefix")
	flagSet.StringVar(&cfg.tagField, "tag-field", "", "tagged union discriminator field (default: union name)")
	flagSet.StringVar(&cfg.valueField, "value-field", "", "field holding a tagged union payload (default: flat)")
	flagSet.BoolVar(&cfg.enableAny, "any", false, "allow the any type")
	flagSet.BoolVar(&cfg.metrics, "metrics", false, "print the document's metrics")
	flagSet.BoolVarP(&cfg.interactive, "interactive", "i", false, "browse the report in a terminal UI")
	flagSet.BoolVarP(&cfg.verbose, "verbose", "v", false, "log derivation details")

	flagSet.Usage = func() {
		fmt.Fprintln(stderr, "Usage: shapecheck (--schema <file.yaml> | --wit <file>) --type <expr> [--input <file>] [flags]")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if flagSet.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}
	if (cfg.schemaPath == "") == (cfg.witPath == "") || cfg.typeExpr == "" {
		flagSet.Usage()
		return nil, fmt.Errorf("--type and exactly one of --schema or --wit are required")
	}
	return cfg, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	cfg, err := parseFlags(args, stderr)
	if stderrors.Is(err, pflag.ErrHelp) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	if cfg.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return 0, fmt.Errorf("create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
		derive.SetLogger(logger.Named("derive"))
		metrics.SetLogger(logger.Named("metrics"))
	}

	chk, err := newChecker(cfg)
	if err != nil {
		return 0, err
	}

	if cfg.interactive {
		return 0, runInteractive(chk, cfg.inputPath)
	}

	data, err := readInput(cfg.inputPath, stdin)
	if err != nil {
		return 0, err
	}
	rep, err := chk.check(data)
	if err != nil {
		return 0, err
	}

	st := newStyles(isTerminal(stderr))
	fmt.Fprint(stderr, st.status(rep, chk.label(cfg.inputPath)))
	if rep.failure != nil {
		return 1, nil
	}
	if _, err := stdout.Write(rep.output()); err != nil {
		return 0, err
	}
	return 0, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func inputFormat(cfg *config) (wire.Format, error) {
	if cfg.format != "" {
		return wire.ParseFormat(cfg.format)
	}
	if f, ok := wire.FormatFromPath(cfg.inputPath); ok {
		return f, nil
	}
	return wire.JSON, nil
}

func dialect(name string) (decode.Dialect, error) {
	switch name {
	case "", "json":
		return decode.JSON, nil
	case "hocon":
		return decode.HOCON, nil
	}
	return decode.Dialect{}, fmt.Errorf("unknown dialect %q", name)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r *report) output() []byte {
	var b bytes.Buffer
	b.Write(r.emitted)
	b.WriteString(r.metrics)
	return b.Bytes()
}
