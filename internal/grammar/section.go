// Package grammar tracks legal element nesting for application metadata documents.
package grammar

// Section is a grammar position: the element that is currently open.
type Section int

const (
	SectionRoot Section = iota
	SectionApplication
	SectionID
	SectionURL
	SectionName
	SectionSummary
	SectionLicense
	SectionDescription
	SectionParagraph
	SectionList
	SectionListItem
	SectionScreenshots
	SectionScreenshot
	SectionUpdateContact
	SectionProjectGroup
	SectionCompulsoryForDesktop
	SectionMetadata
	SectionValue
)

var sectionNames = [...]string{
	SectionRoot:                 "root",
	SectionApplication:          "application",
	SectionID:                   "id",
	SectionURL:                  "url",
	SectionName:                 "name",
	SectionSummary:              "summary",
	SectionLicense:              "license",
	SectionDescription:          "description",
	SectionParagraph:            "paragraph",
	SectionList:                 "list",
	SectionListItem:             "list-item",
	SectionScreenshots:          "screenshots",
	SectionScreenshot:           "screenshot",
	SectionUpdateContact:        "update-contact",
	SectionProjectGroup:         "project-group",
	SectionCompulsoryForDesktop: "compulsory-for-desktop",
	SectionMetadata:             "metadata",
	SectionValue:                "value",
}

// String returns the state name used by the underlying state machine.
func (s Section) String() string {
	if s < 0 || int(s) >= len(sectionNames) {
		return "invalid"
	}
	return sectionNames[s]
}

func parseSection(name string) Section {
	for i, n := range sectionNames {
		if n == name {
			return Section(i)
		}
	}
	return SectionRoot
}

// IDKind is the component kind declared by the type attribute of <id>.
type IDKind int

const (
	IDKindUnknown IDKind = iota
	IDKindDesktop
	IDKindFont
	IDKindInputMethod
	IDKindCodec
)

// ParseIDKind maps a type attribute value to its kind.
func ParseIDKind(s string) IDKind {
	switch s {
	case "desktop":
		return IDKindDesktop
	case "font":
		return IDKindFont
	case "inputmethod", "input-method":
		return IDKindInputMethod
	case "codec":
		return IDKindCodec
	default:
		return IDKindUnknown
	}
}

func (k IDKind) String() string {
	switch k {
	case IDKindDesktop:
		return "desktop"
	case IDKindFont:
		return "font"
	case IDKindInputMethod:
		return "input-method"
	case IDKindCodec:
		return "codec"
	default:
		return "unknown"
	}
}
