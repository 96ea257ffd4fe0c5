// Package config handles katlang.toml settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "katlang.toml"

// Config represents a katlang.toml file.
type Config struct {
	Run  Run  `toml:"run"`
	REPL REPL `toml:"repl"`
	Log  Log  `toml:"log"`

	// Path is the file the configuration was loaded from, empty for defaults.
	Path string `toml:"-"`
}

// Run holds defaults for running programs.
type Run struct {
	Code       string `toml:"code"`
	Trace      bool   `toml:"trace"`
	Whitespace bool   `toml:"whitespace"`
}

// REPL configures the live editor.
type REPL struct {
	Prompt  string `toml:"prompt"`
	History string `toml:"history"`
}

// Log configures commonlog.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Run: Run{
			Code: `"Hello, world!"P`,
		},
		REPL: REPL{
			Prompt:  "> ",
			History: ".katlang_history",
		},
	}
}

// LoadFile parses the file at path over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// Load parses katlang.toml from the given directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// FindAndLoad walks up from startDir to find a katlang.toml file. Without
// one it returns the defaults.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// HistoryPath resolves the REPL history file. Relative paths are taken from
// the home directory.
func (c *Config) HistoryPath() string {
	if c.REPL.History == "" || filepath.IsAbs(c.REPL.History) {
		return c.REPL.History
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, c.REPL.History)
}

// LogFile returns the log path for commonlog.Configure, nil meaning stderr.
func (c *Config) LogFile() *string {
	if c.Log.File == "" {
		return nil
	}
	return &c.Log.File
}
