package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/JaniM/katlang/config"
	"github.com/JaniM/katlang/fan"
	"github.com/JaniM/katlang/interp"
	"github.com/JaniM/katlang/op"
	"github.com/JaniM/katlang/parser"
)

const (
	cellWidth  = 40
	valueRunes = 30
)

// runREPL is the live editor: every entered line extends the program, which
// is then parsed and run again from scratch.
func runREPL(cfg *config.Config, input *fan.Input, whitespace bool, stdout, stderr io.Writer) int {
	fmt.Fprintln(stdout, "Write code below. :undo drops the last line, :reset clears, :quit exits.")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath := cfg.HistoryPath(); histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	var lines []string
	for {
		line, err := ln.Prompt(cfg.REPL.Prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(stdout)
			return 0
		}
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}

		switch strings.TrimSpace(line) {
		case "":
			continue
		case ":quit":
			return 0
		case ":undo":
			if len(lines) > 0 {
				lines = lines[:len(lines)-1]
			}
		case ":reset":
			lines = nil
		default:
			lines = append(lines, line)
			ln.AppendHistory(line)
		}

		runLive(strings.Join(lines, "\n"), input, whitespace).render(stdout)
	}
}

// liveRun is the outcome of one run of the edited program.
type liveRun struct {
	prog     []op.Instruction
	stack    interp.Stack
	side     interp.Stack
	reading  bool
	output   string
	parseErr error
	execErr  error
}

func runLive(src string, input *fan.Input, whitespace bool) liveRun {
	var out bytes.Buffer
	var r liveRun

	r.prog, r.parseErr = parser.Parse(src, parser.WithWhitespace(whitespace))
	it := interp.New(false, interp.WithInput(input.View()), interp.WithOutput(&out))
	if r.parseErr == nil {
		r.execErr = it.Execute(r.prog)
	}
	r.stack = it.Stack()
	r.side = it.SideStack()
	r.reading = it.Capturing()
	r.output = out.String()
	log.Debugf("live run: %d instructions, %d input bytes buffered", len(r.prog), input.Buffered())
	return r
}

func (r liveRun) render(w io.Writer) {
	if r.output != "" {
		fmt.Fprint(w, r.output)
		if !strings.HasSuffix(r.output, "\n") {
			fmt.Fprintln(w)
		}
	}
	if r.parseErr != nil {
		fmt.Fprintf(w, "Parse error: %v\n", r.parseErr)
	}
	if r.execErr != nil {
		fmt.Fprintf(w, "Execution error: %v\n", r.execErr)
	}
	if r.reading {
		fmt.Fprintln(w, "(block still open)")
	}

	fmt.Fprintf(w, "%-*s | %-*s | %-*s\n", cellWidth, "Commands", cellWidth, "Stack", cellWidth, "Side stack")
	rows := len(r.prog)
	if len(r.stack) > rows {
		rows = len(r.stack)
	}
	if len(r.side) > rows {
		rows = len(r.side)
	}
	for i := 0; i < rows; i++ {
		var cmd, item, side string
		if i < len(r.prog) {
			cmd = r.prog[i].String()
		}
		if i < len(r.stack) {
			item = truncate(r.stack[i].DebugDisplay())
		}
		if i < len(r.side) {
			side = truncate(r.side[i].DebugDisplay())
		}
		fmt.Fprintf(w, "%-*s | %-*s | %-*s\n", cellWidth, cmd, cellWidth, item, cellWidth, side)
	}
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) > valueRunes {
		return string(runes[:valueRunes])
	}
	return s
}
