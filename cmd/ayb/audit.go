// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/allyourbase/allyourbase/internal/basecheck"
	"github.com/allyourbase/allyourbase/internal/config"
	"github.com/allyourbase/allyourbase/internal/defdb"
	"github.com/allyourbase/allyourbase/internal/discovery"
	"github.com/allyourbase/allyourbase/internal/issue"
	"github.com/allyourbase/allyourbase/internal/report"
	"github.com/allyourbase/allyourbase/internal/watch"
)

// cliAutoFixHint follows every collision in report-only runs.
const cliAutoFixHint = "Run 'ayb audit --auto-fix' or set auto_fix: true to remove it."

type (
	// auditFlags are the flags of `ayb audit`. Unset flags fall back to the
	// configuration file.
	auditFlags struct {
		autoFix bool
		devMode bool
		gate    string
		modDirs []string
		output  string
		watch   bool
	}

	// auditRun holds everything one audit cycle needs. A watch session reuses
	// it for every re-run.
	auditRun struct {
		app     *App
		cfg     *config.Config
		output  basecheck.OutputFormat
		timeout time.Duration
		limiter *report.Limiter
		logger  *log.Logger
		verbose bool
	}
)

func newAuditCommand(app *App, root *rootFlags) *cobra.Command {
	af := &auditFlags{}
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Report (and optionally remove) mod definitions that overwrite base templates",
		Long: `Audit every installed mod against the base game's template names.

Each top-level definition in a non-base mod whose Name attribute equals a base
template name is reported. With --auto-fix the offending definitions are
deleted from the mod files and auto_fix is switched off again in the
configuration file, so the repair happens exactly once.

After the scan, every chemical definition is checked for a usable addiction
effect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAudit(cmd, app, root, af)
		},
	}

	fs := auditCmd.Flags()
	fs.BoolVar(&af.autoFix, "auto-fix", false, "delete overwriting definitions from mod files")
	fs.BoolVar(&af.devMode, "dev-mode", false, "treat developer mode as enabled")
	fs.StringVar(&af.gate, "gate", "", "when the audit runs: always or dev_mode")
	fs.StringArrayVar(&af.modDirs, "mods-dir", nil, "directory containing mods (repeatable, replaces mod_dirs)")
	fs.StringVarP(&af.output, "output", "o", "", "summary format: human, json, or toml")
	fs.BoolVarP(&af.watch, "watch", "w", false, "re-run the audit (report-only) when definitions change")

	return auditCmd
}

func runAudit(cmd *cobra.Command, app *App, root *rootFlags, af *auditFlags) error {
	ctx := cmd.Context()
	opts := root.loadOptions()

	cfg, _, diags := loadConfigWithFallback(ctx, app.Config, opts)
	if hasErrors(diags) {
		return diags[0].Cause
	}
	app.Diagnostics.Render(ctx, diags, app.stderr)

	flags := cmd.Flags()
	if len(af.modDirs) > 0 {
		cfg.ModDirs = af.modDirs
	}
	autoFixFromFlag := flags.Changed("auto-fix")
	if autoFixFromFlag {
		cfg.AutoFix = af.autoFix
	}
	if flags.Changed("dev-mode") {
		cfg.DevMode = af.devMode
	}
	if af.gate != "" {
		cfg.Gate = config.GateMode(af.gate)
	}
	if af.output != "" {
		cfg.Report.Output = config.OutputFormat(af.output)
	}

	run, err := newAuditRun(app, cfg, root.verbose || cfg.UI.Verbose)
	if err != nil {
		return err
	}

	res, err := run.once(ctx)
	if res == nil {
		return err
	}

	// A completed pass has already changed files, so auto-fix is switched
	// off even when writing the summary failed.
	if res.DisableAutoFix && !autoFixFromFlag {
		run.disableAutoFix(ctx, opts)
	}

	if persistErr := persistFailureError(res); persistErr != nil {
		return &ExitError{Code: 1, Err: errors.Join(persistErr, err)}
	}
	if err != nil {
		return err
	}

	if af.watch {
		rerun := *cfg
		rerun.AutoFix = false
		run.cfg = &rerun
		return run.watch(ctx)
	}
	return nil
}

func newAuditRun(app *App, cfg *config.Config, verbose bool) (*auditRun, error) {
	output := basecheck.OutputFormat(cfg.Report.Output)
	if output == "" {
		output = basecheck.OutputFormatHuman
	}
	if err := output.Validate(); err != nil {
		return nil, err
	}
	if err := basecheck.Gate(cfg.Gate).Validate(); err != nil {
		return nil, err
	}
	timeout, err := cfg.PersistTimeout()
	if err != nil {
		return nil, err
	}

	sink := report.NewLogSink(app.stderr)
	if verbose {
		sink.Logger().SetLevel(log.DebugLevel)
	}
	return &auditRun{
		app:     app,
		cfg:     cfg,
		output:  output,
		timeout: timeout,
		limiter: report.NewLimiter(sink, cfg.Report.MaxMessages),
		logger:  sink.Logger(),
		verbose: verbose,
	}, nil
}

// once runs discovery, the audit pass, and the summary output a single time.
// The result is returned whenever the pass ran, also alongside an error from
// writing the summary.
func (r *auditRun) once(ctx context.Context) (*basecheck.Result, error) {
	loaded, err := r.app.Discovery(r.cfg).Load(ctx)
	if err != nil {
		if errors.Is(err, discovery.ErrNoModDirs) {
			return nil, modsDirError(err)
		}
		return nil, err
	}
	r.app.Diagnostics.Render(ctx, loaded.Diagnostics, r.app.stderr)
	if len(loaded.Mods) == 0 {
		return nil, modsDirError(errors.New("no mods found in the configured mod directories"))
	}

	reg := defdb.Build(loaded.Documents, defdb.WithNameAttr(r.cfg.NameAttribute))
	if r.verbose {
		r.app.Diagnostics.Render(ctx, registryDiagnostics(reg), r.app.stderr)
	}
	r.logger.Debug("corpus loaded", "mods", len(loaded.Mods), "documents", len(loaded.Documents), "defs", reg.Len())

	pass := basecheck.New(basecheck.Mode{
		AutoFix:  r.cfg.AutoFix,
		DevMode:  r.cfg.DevMode,
		Gate:     basecheck.Gate(r.cfg.Gate),
		NameAttr: r.cfg.NameAttribute,
	},
		basecheck.WithSink(r.limiter),
		basecheck.WithCounter(r.limiter),
		basecheck.WithPersistTimeout(r.timeout),
		basecheck.WithAutoFixHint(cliAutoFixHint),
	)
	res, err := pass.Run(ctx, basecheck.Input{Documents: loaded.Documents, Registry: reg})
	if err != nil {
		return nil, err
	}

	summary := basecheck.Summarize(res)
	if r.output == basecheck.OutputFormatHuman {
		renderSummary(r.app.stdout, summary, loaded.Mods)
		return res, nil
	}
	if err := basecheck.WriteSummary(r.app.stdout, r.output, summary); err != nil {
		return res, fmt.Errorf("write %s summary: %w", r.output, err)
	}
	return res, nil
}

// disableAutoFix switches the persisted auto-fix preference off after a run
// that used it. Failures are logged; the audit itself already succeeded.
func (r *auditRun) disableAutoFix(ctx context.Context, opts config.LoadOptions) {
	changed, err := config.DisableAutoFix(ctx, opts)
	switch {
	case err != nil:
		r.logger.Error("could not switch auto_fix off", "err", formatErrorForDisplay(err, r.verbose))
	case changed:
		path, _ := config.FilePath(opts)
		r.logger.Info("auto_fix switched off", "config", path)
	default:
		r.logger.Debug("auto_fix not set in a config file, nothing to switch off")
	}
}

// watch re-runs the audit whenever a definition file changes until ctx ends.
func (r *auditRun) watch(ctx context.Context) error {
	var roots []string
	for _, dir := range r.app.Discovery(r.cfg).ModDirs() {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			roots = append(roots, dir)
		}
	}

	w, err := watch.New(watch.Config{
		Roots:       roots,
		ClearScreen: r.output == basecheck.OutputFormatHuman,
		Stdout:      r.app.stdout,
		Logger:      r.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			r.logger.Info("definitions changed, re-running audit", "files", len(changed))
			_, err := r.once(ctx)
			return err
		},
	})
	if err != nil {
		return err
	}
	r.logger.Info("watching for definition changes", "dirs", len(roots))
	return w.Run(ctx)
}

func persistFailureError(res *basecheck.Result) error {
	failed := res.PersistFailures()
	if len(failed) == 0 {
		return nil
	}
	return issue.NewErrorContext().
		WithOperation("save repaired definitions").
		WithResource(failed[0].Path).
		WithSuggestion("Check that the mod files are writable").
		WithSuggestion("Run 'ayb explain save-failed' for details").
		Wrap(fmt.Errorf("%d file(s) could not be saved: %w", len(failed), errors.Join(failed[0].RepairErr, failed[0].PersistErr))).
		BuildError()
}

func modsDirError(err error) error {
	return issue.NewErrorContext().
		WithOperation("discover mods").
		WithSuggestion("Pass --mods-dir for the game's Data directory and its Mods directory").
		WithSuggestion("Run 'ayb explain mods-dir-not-found' for details").
		Wrap(err).
		BuildError()
}
