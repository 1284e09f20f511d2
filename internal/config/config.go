// Package config provides the rule configuration and rule-file loading for the validator.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/appdata-validator/internal/schemas"
)

// LoadRules reads a rule file and overlays it on DefaultRules.
// Keys absent from the file keep their default value. JSON files are checked
// against the embedded rules schema before decoding; .yaml and .yml files are
// decoded directly.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return Rules{}, &RulesError{Message: "rules path is empty"}
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return Rules{}, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, &RulesError{Path: path, Message: "failed to read rules file", Cause: err}
	}

	rules := DefaultRules()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rules); err != nil {
			return Rules{}, &RulesError{Path: path, Message: "failed to parse rules YAML", Cause: err}
		}
	default:
		if err := schemas.ValidateBytes(schemas.RulesSchema, data); err != nil {
			return Rules{}, &RulesError{Path: path, Message: "rules file does not match schema", Cause: err}
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rules); err != nil {
			return Rules{}, &RulesError{Path: path, Message: "failed to parse rules JSON", Cause: err}
		}
	}

	if err := rules.Validate(); err != nil {
		var rerr *RulesError
		if errors.As(err, &rerr) {
			rerr.Path = path
			return Rules{}, rerr
		}
		return Rules{}, err
	}
	return rules, nil
}

// Duration is a time.Duration that decodes from "5s"-style strings or from a
// whole number of seconds.
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalJSON encodes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "750ms" or 5.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return d.set(raw)
}

// MarshalYAML encodes the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML accepts "750ms" or 5.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	return d.set(raw)
}

func (d *Duration) set(raw interface{}) error {
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(v * float64(time.Second))
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	default:
		return fmt.Errorf("invalid duration %v", raw)
	}
	return nil
}
