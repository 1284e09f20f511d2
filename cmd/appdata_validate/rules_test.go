package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/appdata-validator/internal/config"
)

func TestRulesCommand_YAMLDefaults(t *testing.T) {
	out, _, err := execute(t, "rules")
	require.NoError(t, err)

	assert.Contains(t, out, "length_name_max: 30")
	assert.Contains(t, out, "fetch_timeout: 5s")

	var decoded config.Rules
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, config.DefaultRules(), decoded)
}

func TestRulesCommand_JSONWithFlags(t *testing.T) {
	out, _, err := execute(t, "rules", "--format", "json", "--relax", "--network", "--generation", "legacy")
	require.NoError(t, err)

	var decoded config.Rules
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.False(t, decoded.RequireContactDetails)
	assert.True(t, decoded.HasNetworkAccess)
	assert.Equal(t, "legacy", decoded.Generation)
	assert.Equal(t, ".appdata.xml", decoded.FilenameSuffix)
}

func TestRulesCommand_RulesFileOverlay(t *testing.T) {
	path := writeRules(t, "rules.yaml", "require_translations: true\nacceptable_licenses: [CC0-1.0]\n")
	out, _, err := execute(t, "rules", "-f", "json", "--rules", path, "--require-copyright")
	require.NoError(t, err)

	var decoded config.Rules
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.True(t, decoded.RequireTranslations)
	assert.True(t, decoded.RequireCopyright)
	assert.Equal(t, []string{"CC0-1.0"}, decoded.AcceptableLicenses)
	assert.Equal(t, config.DefaultRules().LengthParaMax, decoded.LengthParaMax)
}

func TestRulesCommand_UnknownFormat(t *testing.T) {
	_, _, err := execute(t, "rules", "--format", "toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
