// katlang runs programs written in a small concatenative golf language.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/JaniM/katlang/config"
	"github.com/JaniM/katlang/fan"
	"github.com/JaniM/katlang/interp"
	"github.com/JaniM/katlang/parser"
)

var log = commonlog.GetLogger("katlang.cli")

type options struct {
	code        string
	file        string
	trace       bool
	traceOut    string
	view        string
	whitespace  bool
	dump        bool
	interactive bool
	input       string
	config      string
	verbosity   int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("katlang", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.code, "c", "", "Executes a string directly")
	fs.StringVar(&opts.file, "f", "", "Executes a source file")
	fs.BoolVar(&opts.trace, "t", false, "Traces the entire execution")
	fs.StringVar(&opts.traceOut, "trace-out", "", "Also store the trace in this file (CBOR)")
	fs.StringVar(&opts.view, "view", "", "Print a trace stored with -trace-out and exit")
	fs.BoolVar(&opts.whitespace, "ws", false, "Whitespace pushes itself as text")
	fs.BoolVar(&opts.dump, "dump", false, "Print the parsed instructions")
	fs.BoolVar(&opts.interactive, "i", false, "Start the live editor")
	fs.StringVar(&opts.input, "in", "", "File that R reads from in the live editor")
	fs.StringVar(&opts.config, "config", "", "Configuration file (default: nearest "+config.FileName+")")
	fs.IntVar(&opts.verbosity, "v", 0, "Log verbosity")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: katlang [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  katlang -c '12 3+'          # prints 15\n")
		fmt.Fprintf(stderr, "  katlang -t -c '(1 2 3)M2*'  # traces a map\n")
		fmt.Fprintf(stderr, "  katlang -i -in input.txt    # live editor, R reads input.txt\n")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(opts.config)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["t"] {
		opts.trace = cfg.Run.Trace
	}
	if !set["ws"] {
		opts.whitespace = cfg.Run.Whitespace
	}
	if !set["v"] {
		opts.verbosity = cfg.Log.Verbosity
	}
	commonlog.Configure(opts.verbosity, cfg.LogFile())
	if cfg.Path != "" {
		log.Infof("using configuration %s", cfg.Path)
	}

	switch {
	case opts.view != "":
		return viewTrace(opts.view, stdout, stderr)
	case opts.interactive:
		input, closeInput, err := replInput(opts.input)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer closeInput()
		return runREPL(cfg, input, opts.whitespace, stdout, stderr)
	}

	src := cfg.Run.Code
	switch {
	case opts.file != "":
		data, err := os.ReadFile(opts.file)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		src = strings.TrimSuffix(string(data), "\n")
	case set["c"]:
		src = opts.code
	}
	return execute(src, opts, stdin, stdout, stderr)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Default(), nil
	}
	return config.FindAndLoad(wd)
}

// execute parses and runs src, then prints the top of the stack.
func execute(src string, opts options, stdin io.Reader, stdout, stderr io.Writer) int {
	prog, err := parser.Parse(src, parser.WithWhitespace(opts.whitespace))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if opts.dump {
		fmt.Fprintln(stdout, repr.String(prog, repr.Indent("  ")))
	}

	it := interp.New(opts.trace, interp.WithInput(stdin), interp.WithOutput(stdout))
	var records []interp.TraceRecord
	for _, in := range prog {
		err = it.ExecuteOne(in)
		if opts.trace {
			recs := interp.Records(it.TakeFrames())
			if werr := interp.WriteTrace(stdout, recs); werr != nil {
				log.Errorf("trace: %s", werr)
			}
			records = append(records, recs...)
		}
		if err != nil {
			break
		}
	}
	if opts.trace && opts.traceOut != "" {
		if werr := storeTrace(opts.traceOut, records); werr != nil {
			fmt.Fprintf(stderr, "Error: %v\n", werr)
			return 1
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if v, ok := it.Pop(); ok {
		fmt.Fprintln(stdout, v.Display())
	}
	return 0
}

func storeTrace(path string, records []interp.TraceRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := interp.EncodeTrace(f, records); err != nil {
		f.Close()
		return err
	}
	log.Infof("stored %d trace frames in %s", len(records), path)
	return f.Close()
}

func viewTrace(path string, stdout, stderr io.Writer) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer f.Close()

	records, err := interp.DecodeTrace(f)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if err := interp.WriteTrace(stdout, records); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// replInput opens the input replayed to every run of the live editor.
func replInput(path string) (*fan.Input, func(), error) {
	if path == "" {
		return fan.New(strings.NewReader("")), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return fan.New(f), func() { f.Close() }, nil
}
