// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/allyourbase/allyourbase/internal/config"
	"github.com/allyourbase/allyourbase/pkg/defxml"
)

// defsPattern matches definition files below a mod's definitions directory.
const defsPattern = "**/*.{xml,XML}"

// ErrNoModDirs is returned when no mod directory is configured.
var ErrNoModDirs = errors.New("no mod directories configured")

type (
	// Mod is a single discovered mod.
	Mod struct {
		// Name is the display name from About.xml, or the directory name.
		Name string
		// PackageID is the packageId from About.xml, or the directory name.
		PackageID string
		// Dir is the absolute mod directory.
		Dir string
		// Partition is trusted when PackageID matches a trusted pattern.
		Partition defxml.Partition
		// LoadOrder is the zero-based discovery position.
		LoadOrder int
	}

	// Option configures a Discovery.
	Option func(*Discovery)

	// Discovery finds mods and loads their definition documents.
	Discovery struct {
		cfg         *config.Config
		modDirs     []string
		concurrency int
	}

	loadJob struct {
		mod  int
		path string
	}

	loadSlot struct {
		doc  *defxml.Document
		diag *Diagnostic
	}
)

// WithModDirs replaces the configured mod directories.
func WithModDirs(dirs ...string) Option {
	return func(d *Discovery) {
		d.modDirs = slices.Clone(dirs)
	}
}

// WithConcurrency limits the number of documents parsed at once.
// Values below 1 fall back to GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(d *Discovery) {
		d.concurrency = n
	}
}

// IsTrusted reports whether the mod belongs to the base corpus.
func (m Mod) IsTrusted() bool { return m.Partition == defxml.PartitionTrusted }

// New creates a Discovery for cfg. A nil cfg uses config.DefaultConfig().
func New(cfg *config.Config, opts ...Option) *Discovery {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	d := &Discovery{
		cfg:     cfg,
		modDirs: slices.Clone(cfg.ModDirs),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.concurrency < 1 {
		d.concurrency = runtime.GOMAXPROCS(0)
	}
	return d
}

// ModDirs returns the mod directories this Discovery scans.
func (d *Discovery) ModDirs() []string { return slices.Clone(d.modDirs) }

// Discover scans every mod directory and returns the mods in load order.
func (d *Discovery) Discover(ctx context.Context) (*ModSetResult, error) {
	if len(d.modDirs) == 0 {
		return nil, ErrNoModDirs
	}

	res := &ModSetResult{}
	seen := make(map[string]string)
	for _, root := range d.modDirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			abs = filepath.Clean(root)
		}
		entries, err := os.ReadDir(abs)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Severity: SeverityError,
				Code:     CodeModsDirNotFound,
				Message:  fmt.Sprintf("mod directory %s cannot be read", abs),
				Path:     abs,
				Cause:    err,
			})
			continue
		}

		// os.ReadDir returns entries sorted by file name.
		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			mod, diag := d.inspect(filepath.Join(abs, entry.Name()))
			if diag != nil {
				res.Diagnostics = append(res.Diagnostics, *diag)
				continue
			}
			key := strings.ToLower(mod.PackageID)
			if first, dup := seen[key]; dup {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					Severity: SeverityWarning,
					Code:     CodeDuplicatePackageID,
					Message:  fmt.Sprintf("mod %s skipped: package id %s already loaded from %s", mod.Dir, mod.PackageID, first),
					Path:     mod.Dir,
				})
				continue
			}
			seen[key] = mod.Dir
			mod.LoadOrder = len(res.Mods)
			res.Mods = append(res.Mods, mod)
		}
	}
	return res, nil
}

// Load discovers mods and parses every definition document they contain.
func (d *Discovery) Load(ctx context.Context) (*LoadResult, error) {
	set, err := d.Discover(ctx)
	if err != nil {
		return nil, err
	}
	res := &LoadResult{Mods: set.Mods, Diagnostics: set.Diagnostics}

	var jobs []loadJob
	for i, mod := range set.Mods {
		paths, diag := d.defFiles(mod)
		if diag != nil {
			res.Diagnostics = append(res.Diagnostics, *diag)
		}
		for _, p := range paths {
			jobs = append(jobs, loadJob{mod: i, path: p})
		}
	}

	slots := make([]loadSlot, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = parseJob(set.Mods[job.mod], job.path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, slot := range slots {
		if slot.diag != nil {
			res.Diagnostics = append(res.Diagnostics, *slot.diag)
			continue
		}
		res.Documents = append(res.Documents, slot.doc)
	}
	orderDocuments(res.Documents, set.Mods)
	return res, nil
}

func (d *Discovery) inspect(dir string) (Mod, *Diagnostic) {
	path := filepath.Join(dir, aboutDir, aboutFile)
	if _, err := os.Stat(path); err != nil {
		return Mod{}, &Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeAboutMissing,
			Message:  fmt.Sprintf("%s has no %s/%s and is not a mod", dir, aboutDir, aboutFile),
			Path:     dir,
			Cause:    err,
		}
	}
	a, err := readAbout(path)
	if err != nil {
		return Mod{}, &Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeAboutParseFailed,
			Message:  fmt.Sprintf("mod %s skipped: %v", dir, err),
			Path:     path,
			Cause:    err,
		}
	}

	base := filepath.Base(dir)
	mod := Mod{Name: cmp.Or(a.Name, base), PackageID: cmp.Or(a.PackageID, base), Dir: dir}
	mod.Partition = defxml.PartitionUntrusted
	if d.cfg.IsTrusted(mod.PackageID) {
		mod.Partition = defxml.PartitionTrusted
	}
	return mod, nil
}

func (d *Discovery) defFiles(mod Mod) ([]string, *Diagnostic) {
	defsDir := filepath.Join(mod.Dir, cmp.Or(d.cfg.DefsDir, config.DefaultDefsDir))
	if _, err := os.Stat(defsDir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	matches, err := doublestar.Glob(os.DirFS(defsDir), defsPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, &Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeDefsListFailed,
			Message:  fmt.Sprintf("definitions of %s could not be listed", mod.Name),
			Path:     defsDir,
			Cause:    err,
		}
	}
	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, filepath.Join(defsDir, filepath.FromSlash(m)))
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

func parseJob(mod Mod, path string) loadSlot {
	doc, err := defxml.ReadDocument(path)
	if err != nil {
		return loadSlot{diag: &Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeDefsParseSkipped,
			Message:  fmt.Sprintf("skipped %s from %s: %v", filepath.Base(path), mod.Name, err),
			Path:     path,
			Cause:    err,
		}}
	}
	doc.Partition = mod.Partition
	doc.ModName = mod.Name
	doc.PackageID = mod.PackageID
	return loadSlot{doc: doc}
}

// orderDocuments sorts trusted documents before untrusted ones, each by mod
// load order and then path.
func orderDocuments(docs []*defxml.Document, mods []Mod) {
	order := make(map[string]int, len(mods))
	for _, m := range mods {
		order[m.PackageID] = m.LoadOrder
	}
	slices.SortStableFunc(docs, func(a, b *defxml.Document) int {
		if a.IsTrusted() != b.IsTrusted() {
			if a.IsTrusted() {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(order[a.PackageID], order[b.PackageID]); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
}
