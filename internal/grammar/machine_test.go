package grammar

import (
	"context"
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/appdata-validator/internal/types"
)

func attrs(kv ...string) []xml.Attr {
	out := make([]xml.Attr, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, xml.Attr{Name: xml.Name{Local: kv[i]}, Value: kv[i+1]})
	}
	return out
}

func langAttrs(lang string) []xml.Attr {
	return []xml.Attr{{Name: xml.Name{Space: xmlNamespace, Local: "lang"}, Value: lang}}
}

func openPath(t *testing.T, m *Machine, tags ...string) {
	t.Helper()
	for _, tag := range tags {
		_, err := m.Open(context.Background(), tag, nil)
		require.NoError(t, err, "opening <%s>", tag)
	}
}

func TestGenerationTable(t *testing.T) {
	tests := []struct {
		name string
		gen  *Generation
		from Section
		tag  string
		want Section
		ok   bool
	}{
		{"root accepts application", Current(), SectionRoot, "application", SectionApplication, true},
		{"root rejects id", Current(), SectionRoot, "id", 0, false},
		{"application accepts metadata_license", Current(), SectionApplication, "metadata_license", SectionLicense, true},
		{"application accepts deprecated licence", Current(), SectionApplication, "licence", SectionLicense, true},
		{"application accepts metadata", Current(), SectionApplication, "metadata", SectionMetadata, true},
		{"legacy rejects metadata", Legacy(), SectionApplication, "metadata", 0, false},
		{"legacy rejects metadata_license", Legacy(), SectionApplication, "metadata_license", 0, false},
		{"legacy rejects compulsory_for_desktop", Legacy(), SectionApplication, "compulsory_for_desktop", 0, false},
		{"description accepts p", Current(), SectionDescription, "p", SectionParagraph, true},
		{"description accepts ul", Current(), SectionDescription, "ul", SectionList, true},
		{"description rejects li", Current(), SectionDescription, "li", 0, false},
		{"ul accepts li", Legacy(), SectionList, "li", SectionListItem, true},
		{"screenshots accepts screenshot", Current(), SectionScreenshots, "screenshot", SectionScreenshot, true},
		{"metadata accepts value", Current(), SectionMetadata, "value", SectionValue, true},
		{"name accepts nothing", Current(), SectionName, "p", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.gen.Child(tt.from, tt.tag)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
				assert.Contains(t, tt.gen.ChildTags(tt.from), tt.tag)
			}
		})
	}
}

func TestGeneration_TagNames(t *testing.T) {
	assert.Equal(t, "metadata_license", Current().TagName(SectionLicense))
	assert.Equal(t, "licence", Legacy().TagName(SectionLicense))
	assert.Equal(t, "updatecontact", Current().TagName(SectionUpdateContact))
	assert.Equal(t, "p", Current().TagName(SectionParagraph))
	assert.Equal(t, "(metadata)", Legacy().TagName(SectionMetadata))
}

func TestGeneration_Required(t *testing.T) {
	assert.True(t, Legacy().IsRequired(SectionURL))
	assert.True(t, Legacy().IsRequired(SectionUpdateContact))
	assert.False(t, Current().IsRequired(SectionURL))
	assert.True(t, Current().IsRequired(SectionID))
	assert.True(t, Current().IsRequired(SectionLicense))
}

func TestLookup(t *testing.T) {
	g, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, GenerationCurrent, g.Name)

	g, err = Lookup(GenerationLegacy)
	require.NoError(t, err)
	assert.Equal(t, GenerationLegacy, g.Name)

	_, err = Lookup("future")
	assert.Error(t, err)
}

func TestMachine_OpenAndCloseFollowTree(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(Current(), MachineOptions{})
	assert.Equal(t, SectionRoot, m.Current())

	openPath(t, m, "application", "description", "ul", "li")
	assert.Equal(t, SectionListItem, m.Current())

	closed, err := m.Close(ctx, "li")
	require.NoError(t, err)
	assert.Equal(t, SectionListItem, closed)
	assert.Equal(t, SectionList, m.Current())

	openPath(t, m, "li")
	for _, tag := range []string{"li", "ul", "description", "application"} {
		_, err := m.Close(ctx, tag)
		require.NoError(t, err)
	}
	assert.Equal(t, SectionRoot, m.Current())
}

func TestMachine_RejectsIllegalOpen(t *testing.T) {
	m := NewMachine(Current(), MachineOptions{})
	openPath(t, m, "application")

	_, err := m.Open(context.Background(), "categories", nil)
	require.Error(t, err)
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "start tag <categories> not allowed from section <application>", err.Error())
	assert.Contains(t, terr.Allowed, "name")
	assert.Contains(t, terr.Allowed, "metadata_license")
	assert.NotContains(t, terr.Allowed, "categories")
	assert.Equal(t, SectionApplication, m.Current())
}

func TestMachine_RejectsRootChildOtherThanApplication(t *testing.T) {
	m := NewMachine(Current(), MachineOptions{})
	_, err := m.Open(context.Background(), "component", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "section <(root)>")
}

func TestMachine_RejectsMismatchedClose(t *testing.T) {
	m := NewMachine(Current(), MachineOptions{})
	openPath(t, m, "application", "name")

	_, err := m.Close(context.Background(), "summary")
	require.Error(t, err)
	assert.Equal(t, "end tag <summary> not allowed from section <name>", err.Error())
	assert.Equal(t, SectionName, m.Current())
}

func TestMachine_RepeatedRootIsNotFatal(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(Current(), MachineOptions{})
	ev, err := m.Open(ctx, "application", nil)
	require.NoError(t, err)
	assert.Empty(t, ev.Findings)
	_, err = m.Close(ctx, "application")
	require.NoError(t, err)

	ev, err = m.Open(ctx, "application", nil)
	require.NoError(t, err)
	require.Len(t, ev.Findings, 1)
	assert.Equal(t, types.KindMarkupInvalid, ev.Findings[0].Kind)
	assert.Equal(t, "<application> used more than once", ev.Findings[0].Message)
}

func TestMachine_IDTypeAttribute(t *testing.T) {
	tests := []struct {
		name     string
		attrs    []xml.Attr
		wantKind IDKind
		finding  *Finding
	}{
		{"desktop", attrs("type", "desktop"), IDKindDesktop, nil},
		{"font", attrs("type", "font"), IDKindFont, nil},
		{"inputmethod", attrs("type", "inputmethod"), IDKindInputMethod, nil},
		{"input-method", attrs("type", "input-method"), IDKindInputMethod, nil},
		{"codec", attrs("type", "codec"), IDKindCodec, nil},
		{"missing defaults to desktop", nil, IDKindDesktop, &Finding{types.KindAttributeMissing, "no type attribute in <id>"}},
		{"unknown", attrs("type", "game"), IDKindUnknown, &Finding{types.KindAttributeInvalid, "<id> has invalid type attribute"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(Current(), MachineOptions{})
			openPath(t, m, "application")
			ev, err := m.Open(context.Background(), "id", tt.attrs)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, ev.IDKind)
			if tt.finding == nil {
				assert.Empty(t, ev.Findings)
			} else {
				assert.Equal(t, []Finding{*tt.finding}, ev.Findings)
			}
		})
	}
}

func TestMachine_URLTypeAttribute(t *testing.T) {
	tests := []struct {
		name  string
		attrs []xml.Attr
		want  []Finding
	}{
		{"homepage", attrs("type", "homepage"), nil},
		{"missing", nil, []Finding{{types.KindAttributeMissing, "no type attribute in <url>"}}},
		{"bugtracker", attrs("type", "bugtracker"), []Finding{{types.KindAttributeInvalid, "<url> has invalid type attribute"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(Current(), MachineOptions{})
			openPath(t, m, "application")
			ev, err := m.Open(context.Background(), "url", tt.attrs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev.Findings)
		})
	}
}

func TestMachine_TranslatedTags(t *testing.T) {
	m := NewMachine(Current(), MachineOptions{})
	openPath(t, m, "application")

	ev, err := m.Open(context.Background(), "name", langAttrs("de"))
	require.NoError(t, err)
	assert.True(t, ev.Translated)
	assert.Equal(t, "de", ev.Lang)
	assert.Empty(t, ev.Findings)
	_, err = m.Close(context.Background(), "name")
	require.NoError(t, err)

	ev, err = m.Open(context.Background(), "summary", langAttrs("C"))
	require.NoError(t, err)
	assert.True(t, ev.Translated)
	assert.Equal(t, []Finding{{types.KindAttributeInvalid, "xml:lang should never be 'C'"}}, ev.Findings)
}

func TestMachine_DeprecatedLicence(t *testing.T) {
	m := NewMachine(Current(), MachineOptions{FlagDeprecated: true})
	openPath(t, m, "application")
	ev, err := m.Open(context.Background(), "licence", nil)
	require.NoError(t, err)
	assert.Equal(t, SectionLicense, ev.Section)
	assert.Equal(t, []Finding{{types.KindAttributeInvalid, "<licence> is deprecated, use <metadata_license> instead"}}, ev.Findings)

	quiet := NewMachine(Current(), MachineOptions{})
	openPath(t, quiet, "application")
	ev, err = quiet.Open(context.Background(), "licence", nil)
	require.NoError(t, err)
	assert.Empty(t, ev.Findings)

	legacy := NewMachine(Legacy(), MachineOptions{FlagDeprecated: true})
	openPath(t, legacy, "application")
	ev, err = legacy.Open(context.Background(), "licence", nil)
	require.NoError(t, err)
	assert.Empty(t, ev.Findings)
}

func TestMachine_ScreenshotAttributes(t *testing.T) {
	ctx := context.Background()
	m := NewMachine(Current(), MachineOptions{})
	openPath(t, m, "application", "screenshots")

	ev, err := m.Open(ctx, "screenshot", attrs("type", "default", "width", "1600", "height", "900"))
	require.NoError(t, err)
	assert.True(t, ev.Default)
	assert.Equal(t, 1600, ev.Width)
	assert.Equal(t, 900, ev.Height)
	assert.Empty(t, ev.Findings)
	_, err = m.Close(ctx, "screenshot")
	require.NoError(t, err)

	ev, err = m.Open(ctx, "screenshot", attrs("type", "default", "width", "wide"))
	require.NoError(t, err)
	assert.Equal(t, 0, ev.Width)
	assert.Equal(t, []Finding{{types.KindMarkupInvalid, "<screenshot> has more than one default"}}, ev.Findings)
	_, err = m.Close(ctx, "screenshot")
	require.NoError(t, err)

	ev, err = m.Open(ctx, "screenshot", attrs("type", "thumbnail"))
	require.NoError(t, err)
	assert.False(t, ev.Default)
	assert.Equal(t, []Finding{{types.KindAttributeInvalid, "<screenshot> has unknown type"}}, ev.Findings)
}
