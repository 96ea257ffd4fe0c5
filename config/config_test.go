package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[run]
code = "12 3+"
trace = true

[log]
verbosity = 2
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if c.Run.Code != "12 3+" || !c.Run.Trace || c.Log.Verbosity != 2 {
		t.Errorf("loaded %+v", c)
	}
	if c.REPL.Prompt != "> " {
		t.Errorf("prompt default lost: %q", c.REPL.Prompt)
	}
	if c.Path != path {
		t.Errorf("Path = %q, want %q", c.Path, path)
	}
	if c.LogFile() != nil {
		t.Errorf("LogFile() = %q, want nil", *c.LogFile())
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[repl]\nprompt = \"kat> \"\n")
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(sub)
	if err != nil {
		t.Fatal(err)
	}
	if c.REPL.Prompt != "kat> " {
		t.Errorf("prompt = %q", c.REPL.Prompt)
	}
	if c.Run.Code != Default().Run.Code {
		t.Errorf("code = %q", c.Run.Code)
	}
}

func TestParseError(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[run\ncode = 1")
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "parse error") {
		t.Errorf("error = %v, want parse error", err)
	}
}

func TestMissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("loading a missing file succeeded")
	}
}

func TestHistoryPath(t *testing.T) {
	c := Default()
	c.REPL.History = ""
	if got := c.HistoryPath(); got != "" {
		t.Errorf("empty history = %q", got)
	}

	abs := filepath.Join(t.TempDir(), "hist")
	c.REPL.History = abs
	if got := c.HistoryPath(); got != abs {
		t.Errorf("absolute history = %q", got)
	}

	t.Setenv("HOME", "/home/kat")
	c.REPL.History = ".hist"
	if got := c.HistoryPath(); got != filepath.Join("/home/kat", ".hist") {
		t.Errorf("relative history = %q", got)
	}
}

func TestLogFile(t *testing.T) {
	c := Default()
	c.Log.File = "kat.log"
	if p := c.LogFile(); p == nil || *p != "kat.log" {
		t.Errorf("LogFile() = %v", p)
	}
}
