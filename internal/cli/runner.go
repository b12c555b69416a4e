// Package cli wires the codec, the transform engine, and the history store
// into the command-line front end.
package cli

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
	"gorm.io/gorm"

	"github.com/Rendaw/luxemog/db"
	"github.com/Rendaw/luxemog/luxem"
	"github.com/Rendaw/luxemog/models"
	"github.com/Rendaw/luxemog/transform"
	"github.com/Rendaw/luxemog/tree"
)

// Runner executes one CLI invocation: load transforms, expand sources,
// rewrite each document, emit results.
type Runner struct {
	config Config

	// Stdin, Stdout, and Stderr default to the process streams; tests
	// replace them.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	history *gorm.DB
}

// NewRunner creates a runner over cfg.
func NewRunner(cfg Config) *Runner {
	return &Runner{
		config: cfg,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

func (r *Runner) logf(format string, args ...any) {
	if r.config.Verbose {
		fmt.Fprintf(r.Stderr, format+"\n", args...)
	}
}

// Run performs the whole invocation. Any error aborts it; the command maps
// errors to exit code 1.
func (r *Runner) Run() error {
	transforms, err := r.loadTransforms()
	if err != nil {
		return err
	}
	r.logf("loaded %d transforms from %s", transforms.Len(), r.config.TransformsPath)

	sources, err := r.expandSources()
	if err != nil {
		return err
	}
	if len(sources) > 1 && r.config.OutPath != "" && r.config.OutPath != "-" {
		return fmt.Errorf("--out cannot name a single file when processing %d sources", len(sources))
	}

	if r.config.HistoryDSN != "" {
		r.history, err = db.Connect(r.config.HistoryDSN, r.config.Debug)
		if err != nil {
			return fmt.Errorf("opening history store %s: %w", r.config.HistoryDSN, err)
		}
	}

	for _, source := range sources {
		if err := r.runSource(transforms, source); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) loadTransforms() (*transform.List, error) {
	data, err := os.ReadFile(r.config.TransformsPath)
	if err != nil {
		return nil, fmt.Errorf("loading transforms from %s: %w", r.config.TransformsPath, err)
	}
	roots, err := luxem.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("loading transforms from %s: %w", r.config.TransformsPath, err)
	}
	list, err := transform.LoadAll(roots)
	if err != nil {
		return nil, fmt.Errorf("loading transforms from %s: %w", r.config.TransformsPath, err)
	}
	return list, nil
}

// expandSources resolves the source arguments: "-" passes through, glob
// patterns expand via doublestar, plain paths pass through untouched.
func (r *Runner) expandSources() ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}
	for _, arg := range r.config.Sources {
		if arg == "-" || !hasGlobMeta(arg) {
			add(arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("expanding source pattern %s: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("source pattern %s matched no files", arg)
		}
		for _, m := range matches {
			add(m)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no sources given")
	}
	return out, nil
}

func hasGlobMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

// runSource rewrites one source document end to end.
func (r *Runner) runSource(transforms *transform.List, source string) error {
	input, err := r.readSource(source)
	if err != nil {
		return fmt.Errorf("loading source from %s: %w", source, err)
	}
	roots, err := luxem.Decode(input)
	if err != nil {
		return fmt.Errorf("loading source from %s: %w", source, err)
	}
	r.logf("applying to %s (%d roots)", source, len(roots))

	started := time.Now()
	rewritten := make([]tree.Value, len(roots))
	for i, root := range roots {
		rewritten[i], err = transforms.Apply(root, r.config.Reverse)
		if err != nil {
			err = fmt.Errorf("transforming %s: %w", source, err)
			r.record(transforms, source, len(roots), input, nil, started, err)
			return err
		}
	}

	output := luxem.EncodeAll(rewritten, r.config.EncodeOptions())
	r.record(transforms, source, len(roots), input, output, started, nil)

	if r.config.ShowDiff {
		return r.printDiff(source, input, rewritten)
	}
	return r.write(output)
}

func (r *Runner) readSource(source string) ([]byte, error) {
	if source == "-" {
		return io.ReadAll(r.Stdin)
	}
	return os.ReadFile(source)
}

func (r *Runner) write(output []byte) error {
	if r.config.OutPath == "" || r.config.OutPath == "-" {
		_, err := r.Stdout.Write(output)
		return err
	}
	if err := os.WriteFile(r.config.OutPath, output, 0o644); err != nil {
		return fmt.Errorf("writing to %s: %w", r.config.OutPath, err)
	}
	r.logf("wrote %s", r.config.OutPath)
	return nil
}

// printDiff renders input and output pretty-printed and emits a unified
// diff, leaving the filesystem untouched.
func (r *Runner) printDiff(source string, input []byte, rewritten []tree.Value) error {
	pretty := luxem.EncodeOptions{Pretty: true}
	before, err := luxem.Decode(input)
	if err != nil {
		return fmt.Errorf("diffing %s: %w", source, err)
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(luxem.EncodeAll(before, pretty))),
		B:        difflib.SplitLines(string(luxem.EncodeAll(rewritten, pretty))),
		FromFile: source,
		ToFile:   source + " (rewritten)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Errorf("diffing %s: %w", source, err)
	}
	_, err = io.WriteString(r.Stdout, text)
	return err
}

// record persists one run row when the history store is enabled. Recording
// is best effort: failures are reported only in verbose mode.
func (r *Runner) record(transforms *transform.List, source string, roots int, input, output []byte, started time.Time, runErr error) {
	if r.history == nil {
		return
	}
	options, _ := json.Marshal(map[string]any{
		"reverse":  r.config.Reverse,
		"minimize": r.config.Minimize,
	})
	run := models.Run{
		ID:             generateID("run"),
		TransformsFile: r.config.TransformsPath,
		Source:         source,
		Reverse:        r.config.Reverse,
		RuleCount:      transforms.Len(),
		RootCount:      roots,
		InputDigest:    digest(input),
		Options:        options,
		DurationMs:     time.Since(started).Milliseconds(),
		Status:         models.RunStatusOK,
	}
	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.Error = runErr.Error()
	} else {
		run.OutputDigest = digest(output)
	}
	if err := r.history.Create(&run).Error; err != nil {
		r.logf("recording run for %s: %v", source, err)
	}
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func generateID(prefix string) string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp
		return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(bytes))
}
