package grammar

import (
	"fmt"
	"sort"
)

// Generation names accepted by Lookup.
const (
	GenerationLegacy  = "legacy"
	GenerationCurrent = "current"
)

// Transition is one row of the grammar table: opening Tag while From is
// open makes To the current section.
type Transition struct {
	From Section
	Tag  string
	To   Section
}

// Generation is a versioned grammar: the accepted element tree plus the
// fields every document of that generation must carry.
type Generation struct {
	Name        string
	Transitions []Transition

	// Required sections are reported as tag-missing when absent, whatever
	// the rule configuration says.
	Required []Section

	// Deprecated maps an accepted tag to the tag that replaces it.
	Deprecated map[string]string

	children map[Section]map[string]Section
	tagNames map[Section]string
}

func newGeneration(name string, required []Section, deprecated map[string]string, transitions ...Transition) *Generation {
	g := &Generation{
		Name:        name,
		Transitions: transitions,
		Required:    required,
		Deprecated:  deprecated,
		children:    make(map[Section]map[string]Section),
		tagNames:    make(map[Section]string),
	}
	for _, t := range transitions {
		if g.children[t.From] == nil {
			g.children[t.From] = make(map[string]Section)
		}
		g.children[t.From][t.Tag] = t.To
		if _, ok := deprecated[t.Tag]; ok {
			continue
		}
		if _, ok := g.tagNames[t.To]; !ok {
			g.tagNames[t.To] = t.Tag
		}
	}
	// sections only reachable through a deprecated tag still need a name
	for _, t := range transitions {
		if _, ok := g.tagNames[t.To]; !ok {
			g.tagNames[t.To] = t.Tag
		}
	}
	return g
}

// Child returns the section entered by opening tag from section from.
func (g *Generation) Child(from Section, tag string) (Section, bool) {
	s, ok := g.children[from][tag]
	return s, ok
}

// TagName returns the canonical element name used in messages.
func (g *Generation) TagName(s Section) string {
	if name, ok := g.tagNames[s]; ok {
		return name
	}
	return "(" + s.String() + ")"
}

// ChildTags lists the tags accepted from section from, sorted.
func (g *Generation) ChildTags(from Section) []string {
	tags := make([]string, 0, len(g.children[from]))
	for tag := range g.children[from] {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// IsRequired reports whether s must be present in every document.
func (g *Generation) IsRequired(s Section) bool {
	for _, r := range g.Required {
		if r == s {
			return true
		}
	}
	return false
}

// descriptionTransitions is the part of the tree shared by every generation.
func descriptionTransitions() []Transition {
	return []Transition{
		{SectionRoot, "application", SectionApplication},
		{SectionDescription, "p", SectionParagraph},
		{SectionDescription, "ul", SectionList},
		{SectionList, "li", SectionListItem},
		{SectionScreenshots, "screenshot", SectionScreenshot},
	}
}

var legacyGeneration = newGeneration(
	GenerationLegacy,
	[]Section{SectionID, SectionLicense, SectionURL, SectionUpdateContact},
	nil,
	append(descriptionTransitions(),
		Transition{SectionApplication, "id", SectionID},
		Transition{SectionApplication, "licence", SectionLicense},
		Transition{SectionApplication, "name", SectionName},
		Transition{SectionApplication, "summary", SectionSummary},
		Transition{SectionApplication, "description", SectionDescription},
		Transition{SectionApplication, "screenshots", SectionScreenshots},
		Transition{SectionApplication, "url", SectionURL},
		Transition{SectionApplication, "updatecontact", SectionUpdateContact},
		Transition{SectionApplication, "project_group", SectionProjectGroup},
	)...,
)

var currentGeneration = newGeneration(
	GenerationCurrent,
	[]Section{SectionID, SectionLicense},
	map[string]string{"licence": "metadata_license"},
	append(descriptionTransitions(),
		Transition{SectionApplication, "id", SectionID},
		Transition{SectionApplication, "metadata_license", SectionLicense},
		Transition{SectionApplication, "licence", SectionLicense},
		Transition{SectionApplication, "name", SectionName},
		Transition{SectionApplication, "summary", SectionSummary},
		Transition{SectionApplication, "description", SectionDescription},
		Transition{SectionApplication, "screenshots", SectionScreenshots},
		Transition{SectionApplication, "url", SectionURL},
		Transition{SectionApplication, "updatecontact", SectionUpdateContact},
		Transition{SectionApplication, "project_group", SectionProjectGroup},
		Transition{SectionApplication, "compulsory_for_desktop", SectionCompulsoryForDesktop},
		Transition{SectionApplication, "metadata", SectionMetadata},
		Transition{SectionMetadata, "value", SectionValue},
	)...,
)

// Lookup returns the generation registered under name.
// An empty name selects the current generation.
func Lookup(name string) (*Generation, error) {
	switch name {
	case GenerationCurrent, "":
		return currentGeneration, nil
	case GenerationLegacy:
		return legacyGeneration, nil
	default:
		return nil, fmt.Errorf("unknown schema generation %q", name)
	}
}

// Current returns the current schema generation.
func Current() *Generation { return currentGeneration }

// Legacy returns the first schema generation.
func Legacy() *Generation { return legacyGeneration }
