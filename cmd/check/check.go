package check

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/streamdl/streamdl/internal/binder"
	"github.com/streamdl/streamdl/internal/color"
	"github.com/streamdl/streamdl/internal/config"
	"github.com/streamdl/streamdl/internal/diag"
	"github.com/streamdl/streamdl/internal/fingerprint"
	"github.com/streamdl/streamdl/internal/loader"
	"github.com/streamdl/streamdl/internal/logger"
)

var (
	checkConfig      string
	checkMinSeverity string
	checkFailOn      string
	checkNoColor     bool
	checkFingerprint bool
	checkExpect      string
)

var CheckCmd = &cobra.Command{
	Use:          "check FILE...",
	Short:        "Compile program files and report diagnostics",
	Long:         "Load each program file, resolve its includes, bind it with a fresh compiler state and print every diagnostic as file:line:col: severity [code] message. Exits non-zero once a diagnostic reaches the fail_on severity.",
	Args:         cobra.MinimumNArgs(1),
	RunE:         runCheck,
	SilenceUsage: true,
}

func init() {
	CheckCmd.Flags().StringVar(&checkConfig, "config", "", "Path to the configuration file (default .streamdl.toml)")
	CheckCmd.Flags().StringVar(&checkMinSeverity, "min-severity", "", "Lowest severity to print: info, warning, error or fatal (env: STREAMDL_MIN_SEVERITY)")
	CheckCmd.Flags().StringVar(&checkFailOn, "fail-on", "", "Severity that makes the command fail (env: STREAMDL_FAIL_ON)")
	CheckCmd.Flags().BoolVar(&checkNoColor, "no-color", false, "Disable colored output")
	CheckCmd.Flags().BoolVar(&checkFingerprint, "fingerprint", false, "Print a fingerprint of each compiled catalog")
	CheckCmd.Flags().StringVar(&checkExpect, "expect-fingerprint", "", "Fail files whose catalog fingerprint differs from this hash")
}

// FileResult is the outcome of checking one program file.
type FileResult struct {
	Path        string
	Diagnostics []Located
	Fingerprint *fingerprint.CatalogFingerprint
	// Err is set when the file could not be read or is not a program
	// document at all.
	Err error
	// Mismatch is set by ExpectFingerprint when the catalog differs.
	Mismatch error
}

// ExpectFingerprint records a mismatch when the catalog of r does not hash to
// hash. Files without a fingerprint are left alone.
func (r *FileResult) ExpectFingerprint(hash string) {
	if r.Fingerprint == nil {
		return
	}
	r.Mismatch = fingerprint.Compare(&fingerprint.CatalogFingerprint{Hash: hash}, r.Fingerprint)
}

// Failed reports whether the file failed to load or has a diagnostic at or
// above failOn.
func (r *FileResult) Failed(failOn diag.Severity) bool {
	if r.Err != nil || r.Mismatch != nil {
		return true
	}
	for _, d := range r.Diagnostics {
		if d.Severity >= failOn {
			return true
		}
	}
	return false
}

// Located is a diagnostic mapped back to the file and line it was written on.
type Located struct {
	diag.Entry
	File   string
	Line   int
	Column int
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(checkConfig)
	if err != nil {
		return err
	}
	if checkMinSeverity != "" {
		if cfg.MinSeverity, err = diag.ParseSeverity(checkMinSeverity); err != nil {
			return fmt.Errorf("--min-severity: %w", err)
		}
	}
	if checkFailOn != "" {
		if cfg.FailOn, err = diag.ParseSeverity(checkFailOn); err != nil {
			return fmt.Errorf("--fail-on: %w", err)
		}
	}
	if checkNoColor {
		cfg.Color = false
	}

	results, err := CheckFiles(cmd.Context(), args, cfg)
	if err != nil {
		return err
	}

	c := color.New(cfg.Color)
	failed := 0
	for _, r := range results {
		if checkExpect != "" {
			r.ExpectFingerprint(checkExpect)
		}
		Print(cmd.OutOrStdout(), c, r, cfg.MinSeverity, checkFingerprint)
		if r.Failed(cfg.FailOn) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed the check", failed, len(results))
	}
	return nil
}

// CheckFiles compiles every path concurrently. Each file gets its own loader
// and binder state, and results come back in argument order.
func CheckFiles(ctx context.Context, paths []string, cfg *config.Config) ([]*FileResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]*FileResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = checkFile(path, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkFile(path string, cfg *config.Config) *FileResult {
	log := logger.For("check")
	res := &FileResult{Path: path}

	doc, err := loader.LoadFile(path, loader.Options{MaxIncludeDepth: cfg.Limits.MaxIncludeDepth})
	if err != nil {
		res.Err = err
		return res
	}

	bound := binder.Bind(doc.Program)
	log.Debug("Checked program", "path", path, "diagnostics", doc.Diagnostics.Len()+bound.Diagnostics.Len())

	locate := func(e diag.Entry) Located {
		l := Located{Entry: e, File: path, Line: e.Range.Start.Line, Column: e.Range.Start.Column}
		if doc.Source != nil {
			if o := doc.Source.Origin(l.Line); o.File != "" {
				l.File = displayPath(o.File)
				l.Line = o.Line
			}
		}
		return l
	}
	for _, e := range doc.Diagnostics.Entries() {
		res.Diagnostics = append(res.Diagnostics, locate(e))
	}
	for _, e := range bound.Diagnostics.Entries() {
		res.Diagnostics = append(res.Diagnostics, locate(e))
	}

	if fp, err := fingerprint.ComputeFingerprint(bound.Catalog); err == nil {
		res.Fingerprint = fp
	} else {
		log.Debug("Failed to fingerprint catalog", "path", path, "error", err)
	}
	return res
}

// displayPath shortens paths below the working directory.
func displayPath(file string) string {
	wd, err := os.Getwd()
	if err != nil {
		return file
	}
	rel, err := filepath.Rel(wd, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return file
	}
	return rel
}

// Print writes the diagnostics of r at or above min.
func Print(w io.Writer, c *color.Color, r *FileResult, min diag.Severity, withFingerprint bool) {
	if r.Err != nil {
		fmt.Fprintf(w, "%s: %s\n", c.Cyan(r.Path), c.Severity(diag.Fatal, r.Err.Error()))
		return
	}
	for _, d := range r.Diagnostics {
		if d.Severity < min {
			continue
		}
		loc := fmt.Sprintf("%s:%d:%d:", d.File, d.Line, d.Column)
		fmt.Fprintf(w, "%s %s [%s] %s\n", c.Cyan(loc), c.Severity(d.Severity, d.Severity.String()), d.Code, d.Message)
	}
	if withFingerprint && r.Fingerprint != nil {
		fmt.Fprintf(w, "%s: %s\n", c.Cyan(r.Path), c.Green(r.Fingerprint.String()))
	}
	if r.Mismatch != nil {
		fmt.Fprintf(w, "%s: %s\n", c.Cyan(r.Path), c.Severity(diag.Error, r.Mismatch.Error()))
	}
}
