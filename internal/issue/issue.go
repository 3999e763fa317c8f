// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	TemplateCollisionId Id = iota + 1
	AutoFixActiveId
	MissingAddictionEffectId
	ConfigLoadFailedId
	ModsDirNotFoundId
	SaveFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	topic    string      // name accepted by 'ayb explain'
	summary  string      // one line shown in topic listings
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) Topic() string {
	return i.topic
}

func (i *Issue) Summary() string {
	return i.summary
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the guide with the given glamour style ("dark", "light",
// "notty", or a path to a style file).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.extLinks) > 0 {
		var sb strings.Builder
		sb.WriteString("\n\n## See also\n")
		for _, link := range i.extLinks {
			sb.WriteString("- <" + string(link) + ">\n")
		}
		md += sb.String()
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	templateCollisionIssue = &Issue{
		id:      TemplateCollisionId,
		topic:   "template-collision",
		summary: "A mod redeclares a template name owned by the base game",
		mdMsg: `
# A mod overwrites a base template

Base definitions declare reusable templates with a ` + "`Name`" + ` attribute:

~~~xml
<HediffDef Name="BaseHediff" Abstract="True">
  <hediffClass>HediffWithComps</hediffClass>
</HediffDef>
~~~

When a mod declares another top-level element with the same ` + "`Name`" + `, it replaces the
base template for **every** definition that inherits from it, including definitions from
other mods. The result is broken or inconsistent content that is hard to trace back.

## Things you can try
- Rename the mod's template (for example ` + "`MyMod_BaseHediff`" + `) and update its children's
  ` + "`ParentName`" + ` attributes.
- Ask the mod author to stop redeclaring base templates.
- Let ayb delete the colliding elements once:
~~~
$ ayb audit --auto-fix
~~~`,
		extLinks: []HttpLink{"https://rimworldwiki.com/wiki/Modding_Tutorials/XML_file_structure"},
	}

	autoFixActiveIssue = &Issue{
		id:      AutoFixActiveId,
		topic:   "auto-fix",
		summary: "What auto-fix changes on disk",
		mdMsg: `
# Auto-fix rewrites mod files

With auto-fix enabled, every top-level element in a mod's definition files whose ` + "`Name`" + `
matches a base template is **deleted**, and the file is written back in place.

- Base game files are never modified.
- A file is only rewritten when at least one element was removed.
- Auto-fix switches itself off after a single run. Enable it again to repeat.

## Enabling it
~~~
$ ayb audit --auto-fix
$ ayb config set auto_fix true
~~~

Keep a copy of your mods (or use your launcher's verify feature) if you want to undo.`,
	}

	missingAddictionEffectIssue = &Issue{
		id:      MissingAddictionEffectId,
		topic:   "missing-addiction-effect",
		summary: "A chemical definition has no usable addiction hediff",
		mdMsg: `
# Chemical without a usable addiction effect

Every ` + "`ChemicalDef`" + ` needs an ` + "`addictionHediff`" + ` that resolves to a ` + "`HediffDef`" + ` with a
` + "`hediffClass`" + `. Raid generation and world generation read it; when it is missing they fail.

## Common causes
- The mod forgot ` + "`<addictionHediff>`" + `.
- The referenced HediffDef does not exist (typo, or it lives in a mod that is not loaded).
- The HediffDef inherits from a template that another mod overwrote without ` + "`hediffClass`" + `.
  Run ` + "`ayb explain template-collision`" + `.`,
	}

	configLoadFailedIssue = &Issue{
		id:      ConfigLoadFailedId,
		topic:   "config-load-failed",
		summary: "The configuration file could not be loaded",
		mdMsg: `
# Failed to load configuration!

The ayb configuration file could not be read or is not valid CUE.

## Things you can try
- Show where ayb looks for it:
~~~
$ ayb config path
~~~
- Recreate a default file:
~~~
$ ayb config init
~~~
- Compare your file with the defaults:
~~~
$ ayb config dump
~~~`,
	}

	modsDirNotFoundIssue = &Issue{
		id:      ModsDirNotFoundId,
		topic:   "mods-dir-not-found",
		summary: "No mod directory is configured or it does not exist",
		mdMsg: `
# No mods to audit

ayb needs at least one directory that contains mods, including the base game's own
content (usually the game's ` + "`Data`" + ` directory) and your ` + "`Mods`" + ` directory.

## Things you can try
~~~
$ ayb audit --mods-dir "/path/to/RimWorld/Data" --mods-dir "/path/to/RimWorld/Mods"
~~~

Or store them in the configuration file:

~~~cue
mod_dirs: [
	"/path/to/RimWorld/Data",
	"/path/to/RimWorld/Mods",
]
~~~`,
	}

	saveFailedIssue = &Issue{
		id:      SaveFailedId,
		topic:   "save-failed",
		summary: "A repaired file could not be written back",
		mdMsg: `
# A repaired file could not be saved

Auto-fix removed elements in memory but the file on disk could not be replaced.
The original file is left untouched.

## Things you can try
- Check that you own the mod directory and that it is not read-only
  (Steam Workshop folders can be locked while the game or Steam updates them).
- Free some disk space.
- Re-enable auto-fix and run the audit again.`,
	}

	issues = map[Id]*Issue{
		templateCollisionIssue.Id():      templateCollisionIssue,
		autoFixActiveIssue.Id():          autoFixActiveIssue,
		missingAddictionEffectIssue.Id(): missingAddictionEffectIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		modsDirNotFoundIssue.Id():        modsDirNotFoundIssue,
		saveFailedIssue.Id():             saveFailedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

// Lookup finds an issue by its explain topic.
func Lookup(topic string) (*Issue, bool) {
	for _, i := range issues {
		if i.topic == topic {
			return i, true
		}
	}
	return nil, false
}
