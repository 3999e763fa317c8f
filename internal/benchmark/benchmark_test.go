// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/allyourbase/allyourbase/internal/basecheck"
	"github.com/allyourbase/allyourbase/internal/config"
	"github.com/allyourbase/allyourbase/internal/defdb"
	"github.com/allyourbase/allyourbase/internal/discovery"
	"github.com/allyourbase/allyourbase/internal/report"
	"github.com/allyourbase/allyourbase/internal/testutil"
	"github.com/allyourbase/allyourbase/pkg/defxml"
)

const (
	// overlayMods is the number of untrusted mods in the generated corpus.
	overlayMods = 20
	// defsPerFile is the number of top-level definitions per generated file.
	defsPerFile = 200
)

// baseDefs renders a base file with n abstract templates, n hediffs and a
// chemical per hediff.
func baseDefs(n int) string {
	elements := make([]string, 0, 3*n)
	for i := range n {
		elements = append(elements,
			fmt.Sprintf(`<HediffDef Name="BaseHediff%d" Abstract="True"><hediffClass>HediffWithComps</hediffClass><stages><li><minSeverity>0</minSeverity></li></stages></HediffDef>`, i),
			fmt.Sprintf(`<HediffDef ParentName="BaseHediff%d"><defName>Addiction%d</defName><label>addiction %d</label></HediffDef>`, i, i, i),
			fmt.Sprintf(`<ChemicalDef><defName>Chemical%d</defName><addictionHediff>Addiction%d</addictionHediff></ChemicalDef>`, i, i),
		)
	}
	return testutil.DefsXML(elements...)
}

// overlayDefs renders an overlay file where every tenth template redeclares
// a base name.
func overlayDefs(mod, n int) string {
	elements := make([]string, 0, n)
	for i := range n {
		name := fmt.Sprintf("Mod%dTemplate%d", mod, i)
		if i%10 == 0 {
			name = fmt.Sprintf("BaseHediff%d", i)
		}
		elements = append(elements, fmt.Sprintf(`<ThingDef Name=%q Abstract="True"><thingClass>ThingWithComps</thingClass></ThingDef>`, name))
	}
	return testutil.DefsXML(elements...)
}

// writeCorpus lays out one base mod and overlayMods overlay mods and returns
// the mods root.
func writeCorpus(b *testing.B) string {
	b.Helper()
	root := filepath.Join(b.TempDir(), "Mods")
	mods := []testutil.Mod{{
		Dir: "Core", Name: "Core", PackageID: "Ludeon.RimWorld",
		Defs: map[string]string{"Hediffs.xml": baseDefs(defsPerFile)},
	}}
	for i := range overlayMods {
		mods = append(mods, testutil.Mod{
			Dir: fmt.Sprintf("Mod%02d", i), Name: fmt.Sprintf("Mod %d", i), PackageID: fmt.Sprintf("author.mod%d", i),
			Defs: map[string]string{"Things/Templates.xml": overlayDefs(i, defsPerFile)},
		})
	}
	testutil.WriteMods(b, root, mods...)
	return root
}

func loadCorpus(b *testing.B, root string) *discovery.LoadResult {
	b.Helper()
	loaded, err := discovery.New(config.DefaultConfig(), discovery.WithModDirs(root)).Load(b.Context())
	if err != nil {
		b.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Documents) != overlayMods+1 {
		b.Fatalf("loaded %d documents, want %d", len(loaded.Documents), overlayMods+1)
	}
	return loaded
}

// BenchmarkParse benchmarks parsing a large definition file.
// This exercises the hot path in pkg/defxml/parse.go.
func BenchmarkParse(b *testing.B) {
	data := []byte(baseDefs(defsPerFile))

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		if _, err := defxml.Parse(data, "Hediffs.xml"); err != nil {
			b.Fatalf("Parse failed: %v", err)
		}
	}
}

// BenchmarkLoad benchmarks mod discovery and parallel document loading.
// This exercises the hot path in internal/discovery/.
func BenchmarkLoad(b *testing.B) {
	root := writeCorpus(b)

	b.ResetTimer()
	for b.Loop() {
		loadCorpus(b, root)
	}
}

// BenchmarkPassReportOnly benchmarks name collection and scanning without
// repair. Report-only runs never mutate documents, so the corpus is reused.
func BenchmarkPassReportOnly(b *testing.B) {
	loaded := loadCorpus(b, writeCorpus(b))
	reg := defdb.Build(loaded.Documents)

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		sink := report.NewLimiter(&report.Recorder{}, config.DefaultMaxMessages)
		res, err := basecheck.New(basecheck.Mode{}, basecheck.WithSink(sink), basecheck.WithCounter(sink)).
			Run(b.Context(), basecheck.Input{Documents: loaded.Documents, Registry: reg})
		if err != nil {
			b.Fatalf("Run failed: %v", err)
		}
		if want := overlayMods * defsPerFile / 10; len(res.Collisions) != want {
			b.Fatalf("collisions = %d, want %d", len(res.Collisions), want)
		}
	}
}

// BenchmarkRegistry benchmarks registry construction and chemical resolution.
// This exercises the hot path in internal/defdb/.
func BenchmarkRegistry(b *testing.B) {
	loaded := loadCorpus(b, writeCorpus(b))

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		chems := defdb.Build(loaded.Documents).Chemicals()
		if len(chems) != defsPerFile {
			b.Fatalf("chemicals = %d, want %d", len(chems), defsPerFile)
		}
		for _, c := range chems {
			if c.AddictionEffect == nil || !strings.HasPrefix(c.AddictionEffect.DefName, "Addiction") {
				b.Fatalf("unresolved chemical %+v", c)
			}
		}
	}
}
