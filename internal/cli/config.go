package cli

import (
	"os"

	"github.com/Rendaw/luxemog/luxem"
)

// Config holds one invocation's settings, assembled from flags and
// LUXEMOG_* environment variables.
type Config struct {
	// TransformsPath names the transforms file.
	TransformsPath string
	// Sources are file paths, doublestar globs, or "-" for stdin.
	Sources []string
	// OutPath is the output file; "" or "-" writes to stdout.
	OutPath string
	// Reverse swaps from and to for every rule.
	Reverse bool
	// Minimize disables pretty-printing of the output.
	Minimize bool
	// UseSpaces indents pretty output with spaces instead of tabs.
	UseSpaces bool
	// IndentCount is how many indent characters make one level.
	IndentCount int
	// Verbose writes phase diagnostics to stderr.
	Verbose bool
	// ShowDiff prints a unified diff instead of writing results.
	ShowDiff bool
	// HistoryDSN enables run recording when non-empty: a SQLite path or a
	// libsql URL.
	HistoryDSN string
	// Debug enables database query logging.
	Debug bool
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		IndentCount: 1,
	}
}

// ApplyEnv fills unset fields from the environment. Explicit flags win.
func (c *Config) ApplyEnv() {
	if c.HistoryDSN == "" {
		c.HistoryDSN = os.Getenv("LUXEMOG_DB")
	}
	if !c.Debug && os.Getenv("LUXEMOG_DEBUG") != "" {
		c.Debug = true
	}
}

// EncodeOptions maps the output settings onto the codec.
func (c *Config) EncodeOptions() luxem.EncodeOptions {
	opts := luxem.EncodeOptions{Pretty: !c.Minimize, IndentCount: c.IndentCount}
	if c.UseSpaces {
		opts.IndentChar = ' '
	} else {
		opts.IndentChar = '\t'
	}
	return opts
}
