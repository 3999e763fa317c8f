// SPDX-License-Identifier: MPL-2.0

package basecheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allyourbase/allyourbase/internal/integrity"
	"github.com/allyourbase/allyourbase/internal/report"
	"github.com/allyourbase/allyourbase/pkg/defxml"
)

const (
	// GateAlways runs the pass on every start.
	GateAlways Gate = "always"
	// GateDevMode runs the pass only when developer mode is on.
	GateDevMode Gate = "dev_mode"

	// DefaultPersistTimeout bounds a single document save.
	DefaultPersistTimeout = 30 * time.Second
)

const (
	// PhaseIdle is the state of a Pass that has not run.
	PhaseIdle Phase = iota
	// PhaseCollectingNames builds the known-name set from trusted documents.
	PhaseCollectingNames
	// PhaseScanning looks for collisions in untrusted documents.
	PhaseScanning
	// PhaseRepairing removes collisions and saves changed documents.
	// It is entered only with auto-fix.
	PhaseRepairing
	// PhaseIntegrityChecking validates chemical records in the registry.
	PhaseIntegrityChecking
	// PhaseDone is the final state.
	PhaseDone
)

var (
	// ErrAlreadyRan is returned when Run is called on a Pass that already ran.
	ErrAlreadyRan = errors.New("pass already ran")
	// ErrNilSink is returned when a Pass is run without a reporting sink.
	ErrNilSink = errors.New("pass requires a reporting sink")
	// ErrInvalidGate is the sentinel error wrapped by InvalidGateError.
	ErrInvalidGate = errors.New("invalid gate")
)

type (
	// Gate decides whether a run happens at all.
	Gate string

	// InvalidGateError is returned when a Gate value is not recognized.
	// It wraps ErrInvalidGate for errors.Is() compatibility.
	InvalidGateError struct {
		Value Gate
	}

	// Phase is a state of the pass. Phases only move forward.
	Phase int

	// Mode is the explicit input that replaces ambient preferences.
	Mode struct {
		AutoFix  bool
		DevMode  bool
		Gate     Gate
		NameAttr string
	}

	// MessageCounter is the collaborator whose message count is reset at the
	// start of every run.
	MessageCounter interface {
		ResetMessageCount()
	}

	// Input is the data a run operates on. Documents must be ordered; trusted
	// documents contribute names, untrusted documents are scanned.
	Input struct {
		Documents []*defxml.Document
		// Registry may be nil, in which case the integrity phase reports nothing.
		Registry integrity.Registry
	}

	// DocumentOutcome records what happened to one overlay document.
	DocumentOutcome struct {
		Path       string
		ModName    string
		Collisions []Collision
		Removed    []string
		Persisted  bool
		RepairErr  error
		PersistErr error
	}

	// Result is the outcome of one run.
	Result struct {
		Skipped bool
		AutoFix bool
		// DisableAutoFix asks the caller to switch the auto-fix preference off.
		DisableAutoFix   bool
		KnownNames       int
		DocumentsScanned int
		Collisions       []Collision
		Outcomes         []DocumentOutcome
		Violations       []integrity.Violation
		Phases           []Phase
	}

	// Option configures a Pass.
	Option func(*passOptions)

	passOptions struct {
		sink           report.Sink
		counter        MessageCounter
		persister      Persister
		persistTimeout time.Duration
		hint           string
	}

	// Pass is a single audit run. A Pass runs at most once.
	Pass struct {
		mode  Mode
		opts  passOptions
		phase Phase
		ran   bool
	}
)

// Validate returns an error if the Gate is not recognized. The empty value is
// treated as GateAlways.
func (g Gate) Validate() error {
	switch g {
	case "", GateAlways, GateDevMode:
		return nil
	default:
		return &InvalidGateError{Value: g}
	}
}

// String returns the string representation of the Gate.
func (g Gate) String() string { return string(g) }

// Error implements the error interface for InvalidGateError.
func (e *InvalidGateError) Error() string {
	return fmt.Sprintf("invalid gate %q (valid: always, dev_mode)", e.Value)
}

// Unwrap returns ErrInvalidGate for errors.Is() compatibility.
func (e *InvalidGateError) Unwrap() error { return ErrInvalidGate }

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCollectingNames:
		return "collecting_names"
	case PhaseScanning:
		return "scanning"
	case PhaseRepairing:
		return "repairing"
	case PhaseIntegrityChecking:
		return "integrity_checking"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// WithSink sets the reporting sink. Required.
func WithSink(s report.Sink) Option {
	return func(o *passOptions) { o.sink = s }
}

// WithCounter sets the collaborator whose message count is reset at run start.
func WithCounter(c MessageCounter) Option {
	return func(o *passOptions) { o.counter = c }
}

// WithPersister replaces the default file persister.
func WithPersister(p Persister) Option {
	return func(o *passOptions) { o.persister = p }
}

// WithPersistTimeout bounds each document save. Zero disables the bound.
func WithPersistTimeout(d time.Duration) Option {
	return func(o *passOptions) { o.persistTimeout = d }
}

// WithAutoFixHint replaces the remediation hint reported per collision when
// auto-fix is off.
func WithAutoFixHint(hint string) Option {
	return func(o *passOptions) { o.hint = hint }
}

// New creates a Pass for mode.
func New(mode Mode, opts ...Option) *Pass {
	o := passOptions{
		persister:      FilePersister(),
		persistTimeout: DefaultPersistTimeout,
		hint:           DefaultAutoFixHint,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if mode.NameAttr == "" {
		mode.NameAttr = defxml.DefaultNameAttr
	}
	if mode.Gate == "" {
		mode.Gate = GateAlways
	}
	return &Pass{mode: mode, opts: o}
}

// Mode returns the mode the pass was created with, with defaults applied.
func (p *Pass) Mode() Mode { return p.mode }

// Phase returns the current phase.
func (p *Pass) Phase() Phase { return p.phase }

// Run executes the pass. It returns an error only for lifecycle faults, an
// invalid mode, or a context that is already done; everything found in the
// corpus is reported through the sink and recorded in the Result.
func (p *Pass) Run(ctx context.Context, in Input) (*Result, error) {
	if p.ran {
		return nil, ErrAlreadyRan
	}
	if p.opts.sink == nil {
		return nil, ErrNilSink
	}
	if err := p.mode.Gate.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.ran = true

	res := &Result{AutoFix: p.mode.AutoFix, Phases: []Phase{PhaseIdle}}
	sink := p.opts.sink

	if p.mode.Gate == GateDevMode && !p.mode.DevMode {
		res.Skipped = true
		res.AutoFix = false
		p.enter(res, PhaseDone)
		return res, nil
	}

	if p.opts.counter != nil {
		p.opts.counter.ResetMessageCount()
	}
	if p.mode.AutoFix {
		sink.Emit(report.Entry{Severity: report.SeverityError, Text: autoFixNoticeText(), BypassLimit: true})
	}

	p.enter(res, PhaseCollectingNames)
	known := CollectTemplateNames(in.Documents, p.mode.NameAttr)
	res.KnownNames = known.Len()

	p.enter(res, PhaseScanning)
	order := OrderForward
	if p.mode.AutoFix {
		order = OrderReverse
	}
	var targets []*defxml.Document
	for _, doc := range in.Documents {
		if doc == nil || doc.IsTrusted() {
			continue
		}
		res.DocumentsScanned++
		found := Scan(doc, known, p.mode.NameAttr, order)
		for _, c := range found {
			report.Warningf(sink, "%s", collisionText(c))
			if !p.mode.AutoFix {
				report.Messagef(sink, "%s", hintText(c, p.opts.hint))
			}
		}
		if len(found) == 0 {
			continue
		}
		res.Collisions = append(res.Collisions, found...)
		res.Outcomes = append(res.Outcomes, DocumentOutcome{Path: doc.Path, ModName: doc.ModName, Collisions: found})
		targets = append(targets, doc)
	}

	if p.mode.AutoFix {
		p.enter(res, PhaseRepairing)
		for i, doc := range targets {
			p.repair(ctx, doc, &res.Outcomes[i])
		}
	}

	p.enter(res, PhaseIntegrityChecking)
	res.Violations = integrity.Check(in.Registry, sink)

	if p.mode.AutoFix {
		sink.Emit(report.Entry{
			Severity:    report.SeverityMessage,
			Text:        completionText(res.Removed(), res.FilesChanged(), len(res.PersistFailures())),
			BypassLimit: true,
		})
		res.DisableAutoFix = true
	}

	p.enter(res, PhaseDone)
	return res, nil
}

func (p *Pass) repair(ctx context.Context, doc *defxml.Document, out *DocumentOutcome) {
	sink := p.opts.sink
	state, err := ApplyRepair(PlanRepair(doc, p.mode.NameAttr, out.Collisions))
	if err != nil {
		out.RepairErr = err
		report.Errorf(sink, "%s", repairFailedText(doc.Path, err))
		return
	}
	out.Removed = state.Removed
	if !state.Dirty {
		return
	}

	saveCtx := ctx
	if p.opts.persistTimeout > 0 {
		var cancel context.CancelFunc
		saveCtx, cancel = context.WithTimeout(ctx, p.opts.persistTimeout)
		defer cancel()
	}
	if err := p.opts.persister.Persist(saveCtx, doc); err != nil {
		out.PersistErr = err
		report.Errorf(sink, "%s", persistFailedText(doc.Path, err))
		return
	}
	out.Persisted = true
	report.Messagef(sink, "%s", removedText(doc.Path, state.Removed))
}

func (p *Pass) enter(res *Result, next Phase) {
	if next <= p.phase {
		panic(fmt.Sprintf("basecheck: phase %s entered after %s", next, p.phase))
	}
	p.phase = next
	res.Phases = append(res.Phases, next)
}

// Removed returns the number of elements removed across all documents.
func (r *Result) Removed() int {
	n := 0
	for _, o := range r.Outcomes {
		n += len(o.Removed)
	}
	return n
}

// FilesChanged returns the number of documents saved after a repair.
func (r *Result) FilesChanged() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Persisted {
			n++
		}
	}
	return n
}

// PersistFailures returns the outcomes whose save failed.
func (r *Result) PersistFailures() []DocumentOutcome {
	var out []DocumentOutcome
	for _, o := range r.Outcomes {
		if o.PersistErr != nil || o.RepairErr != nil {
			out = append(out, o)
		}
	}
	return out
}

// FinalPhase returns the last phase the run reached.
func (r *Result) FinalPhase() Phase {
	if len(r.Phases) == 0 {
		return PhaseIdle
	}
	return r.Phases[len(r.Phases)-1]
}
