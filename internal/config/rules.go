package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Rules is the immutable rule configuration applied to every document of a run.
// It is passed by value; nothing in the validator mutates it.
type Rules struct {
	Generation string `json:"generation,omitempty" yaml:"generation,omitempty" validate:"omitempty,oneof=legacy current"`

	// Text lengths, in characters
	LengthNameMin          int `json:"length_name_min" yaml:"length_name_min" validate:"gte=0"`
	LengthNameMax          int `json:"length_name_max" yaml:"length_name_max" validate:"gte=0"`
	LengthSummaryMin       int `json:"length_summary_min" yaml:"length_summary_min" validate:"gte=0"`
	LengthSummaryMax       int `json:"length_summary_max" yaml:"length_summary_max" validate:"gte=0"`
	LengthParaMin          int `json:"length_para_min" yaml:"length_para_min" validate:"gte=0"`
	LengthParaMax          int `json:"length_para_max" yaml:"length_para_max" validate:"gte=0"`
	LengthListItemMin      int `json:"length_list_item_min" yaml:"length_list_item_min" validate:"gte=0"`
	LengthListItemMax      int `json:"length_list_item_max" yaml:"length_list_item_max" validate:"gte=0"`
	LengthUpdateContactMin int `json:"length_update_contact_min" yaml:"length_update_contact_min" validate:"gte=0"`
	LengthParaBeforeList   int `json:"length_para_chars_before_list" yaml:"length_para_chars_before_list" validate:"gte=0"`

	// Counts
	NumberParaMin        int `json:"number_para_min" yaml:"number_para_min" validate:"gte=0"`
	NumberParaMax        int `json:"number_para_max" yaml:"number_para_max" validate:"gte=0"`
	NumberScreenshotsMin int `json:"number_screenshots_min" yaml:"number_screenshots_min" validate:"gte=0"`
	NumberScreenshotsMax int `json:"number_screenshots_max" yaml:"number_screenshots_max" validate:"gte=0"`

	// Screenshot resolution, in pixels
	ScreenshotWidthMin  int `json:"screenshot_width_min" yaml:"screenshot_width_min" validate:"gte=0"`
	ScreenshotWidthMax  int `json:"screenshot_width_max" yaml:"screenshot_width_max" validate:"gte=0"`
	ScreenshotHeightMin int `json:"screenshot_height_min" yaml:"screenshot_height_min" validate:"gte=0"`
	ScreenshotHeightMax int `json:"screenshot_height_max" yaml:"screenshot_height_max" validate:"gte=0"`

	RequireContactDetails     bool `json:"require_contact_details" yaml:"require_contact_details"`
	RequireURL                bool `json:"require_url" yaml:"require_url"`
	RequireCopyright          bool `json:"require_copyright" yaml:"require_copyright"`
	RequireTranslations       bool `json:"require_translations" yaml:"require_translations"`
	HasNetworkAccess          bool `json:"has_network_access" yaml:"has_network_access"`
	RequireCorrectAspectRatio bool `json:"require_correct_aspect_ratio" yaml:"require_correct_aspect_ratio"`
	DeprecatedFailure         bool `json:"deprecated_failure" yaml:"deprecated_failure"`

	DesiredAspectRatio   float64 `json:"desired_aspect_ratio" yaml:"desired_aspect_ratio" validate:"gt=0"`
	AspectRatioTolerance float64 `json:"aspect_ratio_tolerance" yaml:"aspect_ratio_tolerance" validate:"gte=0"`

	AcceptableLicenses []string `json:"acceptable_licenses" yaml:"acceptable_licenses" validate:"required,min=1,dive,required"`

	FilenameSuffix string `json:"filename_suffix" yaml:"filename_suffix" validate:"required"`

	FetchTimeout Duration `json:"fetch_timeout" yaml:"fetch_timeout"`
	UserAgent    string   `json:"user_agent" yaml:"user_agent"`
}

// Default values shared by the rule profiles.
const (
	DefaultDesiredAspectRatio   = 1.777777778
	DefaultAspectRatioTolerance = 0.1
	DefaultFilenameSuffix       = ".appdata.xml"
	DefaultFetchTimeout         = 5 * time.Second
	DefaultUserAgent            = "appdata-validate"
)

// DefaultRules returns the strict profile used for catalog publication.
func DefaultRules() Rules {
	return Rules{
		Generation:             "current",
		LengthNameMin:          3,
		LengthNameMax:          30,
		LengthSummaryMin:       8,
		LengthSummaryMax:       100,
		LengthParaMin:          50,
		LengthParaMax:          600,
		LengthListItemMin:      20,
		LengthListItemMax:      100,
		LengthUpdateContactMin: 6,
		LengthParaBeforeList:   100,
		NumberParaMin:          2,
		NumberParaMax:          4,
		NumberScreenshotsMin:   1,
		NumberScreenshotsMax:   5,
		ScreenshotWidthMin:     624,
		ScreenshotWidthMax:     1600,
		ScreenshotHeightMin:    351,
		ScreenshotHeightMax:    900,
		RequireContactDetails:  true,
		RequireURL:             true,
		DesiredAspectRatio:     DefaultDesiredAspectRatio,
		AspectRatioTolerance:   DefaultAspectRatioTolerance,
		AcceptableLicenses: []string{
			"CC0", "CC0-1.0",
			"CC-BY", "CC-BY-3.0", "CC-BY-4.0",
			"CC-BY-SA", "CC-BY-SA-3.0", "CC-BY-SA-4.0",
			"GFDL", "GFDL-1.3",
			"FSFAP",
		},
		FilenameSuffix: DefaultFilenameSuffix,
		FetchTimeout:   Duration(DefaultFetchTimeout),
		UserAgent:      DefaultUserAgent,
	}
}

// RelaxedRules is DefaultRules without the contact details requirement.
func RelaxedRules() Rules {
	r := DefaultRules()
	r.RequireContactDetails = false
	return r
}

// LicenseAccepted reports whether license is on the whitelist.
func (r Rules) LicenseAccepted(license string) bool {
	for _, l := range r.AcceptableLicenses {
		if l == license {
			return true
		}
	}
	return false
}

// Timeout returns the per-request screenshot fetch timeout.
func (r Rules) Timeout() time.Duration {
	if r.FetchTimeout <= 0 {
		return DefaultFetchTimeout
	}
	return time.Duration(r.FetchTimeout)
}

// Validate checks field constraints and that every min/max pair is ordered.
func (r Rules) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return &RulesError{Message: "invalid rule configuration", Cause: err}
	}

	pairs := []struct {
		name     string
		min, max int
	}{
		{"length_name", r.LengthNameMin, r.LengthNameMax},
		{"length_summary", r.LengthSummaryMin, r.LengthSummaryMax},
		{"length_para", r.LengthParaMin, r.LengthParaMax},
		{"length_list_item", r.LengthListItemMin, r.LengthListItemMax},
		{"number_para", r.NumberParaMin, r.NumberParaMax},
		{"number_screenshots", r.NumberScreenshotsMin, r.NumberScreenshotsMax},
		{"screenshot_width", r.ScreenshotWidthMin, r.ScreenshotWidthMax},
		{"screenshot_height", r.ScreenshotHeightMin, r.ScreenshotHeightMax},
	}
	var bad []string
	for _, p := range pairs {
		if p.min > p.max {
			bad = append(bad, fmt.Sprintf("%s_min (%d) > %s_max (%d)", p.name, p.min, p.name, p.max))
		}
	}
	if len(bad) > 0 {
		return &RulesError{Message: "invalid bounds: " + strings.Join(bad, "; ")}
	}
	return nil
}

// RulesError reports an unusable rule configuration.
type RulesError struct {
	Path    string
	Message string
	Cause   error
}

func (e *RulesError) Error() string {
	prefix := "rules error"
	if e.Path != "" {
		prefix = fmt.Sprintf("rules error in %s", e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *RulesError) Unwrap() error {
	return e.Cause
}
