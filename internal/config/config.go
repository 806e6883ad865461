// Package config holds the storyc settings shared by all commands.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/lhaig/storyscript/internal/cli"
	"github.com/lhaig/storyscript/internal/logger"
)

// Config is the resolved configuration of a storyc run.
type Config struct {
	LogLevel  zapcore.Level
	LogFormat string
	// Jobs bounds how many tree files are analysed concurrently
	Jobs int
	// Extensions are the file suffixes treated as tree files when a
	// directory is checked
	Extensions []string
	// FailFast stops a batch at the first file with errors
	FailFast bool
}

// DefaultExtensions are the tree file suffixes recognised by default.
var DefaultExtensions = []string{".yaml", ".yml", ".json"}

// NewConfig returns a new instance of Config with defaults.
func NewConfig() *Config {
	return &Config{
		LogLevel:   zapcore.WarnLevel,
		LogFormat:  "auto",
		Jobs:       runtime.GOMAXPROCS(0),
		Extensions: append([]string(nil), DefaultExtensions...),
	}
}

// Opts returns the command line options bound to c. Flag names double as
// config file keys and, upper-cased with a STORYC_ prefix, env var names.
func (c *Config) Opts() []cli.Opt {
	return []cli.Opt{
		cli.NewOpt(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error"),
		cli.NewOpt(&c.LogFormat, "log-format", c.LogFormat, "log format: auto, console, logfmt, json"),
		cli.NewOpt(&c.Jobs, "jobs", c.Jobs, "number of files analysed concurrently"),
		cli.NewOpt(&c.Extensions, "extensions", c.Extensions, "file extensions of tree files"),
		cli.NewOpt(&c.FailFast, "fail-fast", c.FailFast, "stop at the first file with errors"),
	}
}

// Validate checks c and normalises its extensions to a leading dot.
func (c *Config) Validate() error {
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	if len(c.Extensions) == 0 {
		return errors.New("at least one tree file extension is required")
	}
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			return fmt.Errorf("invalid extension %q", c.Extensions[i])
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
	switch c.LogFormat {
	case "auto", "console", "logfmt", "json":
	default:
		return fmt.Errorf("unknown logging format: %s", c.LogFormat)
	}
	return nil
}

// Logger returns the logger settings of c.
func (c *Config) Logger() logger.Config {
	return logger.Config{Format: c.LogFormat, Level: c.LogLevel}
}
