package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/appdata-validator/internal/schemas"
	"github.com/jonathan/appdata-validator/internal/types"
)

func sampleReport() *types.Report {
	return &types.Report{
		RunID:      "3f1c2a9e-8d7b-4c6a-9e5f-1a2b3c4d5e6f",
		Generation: "current",
		Files: []types.FileReport{
			{Filename: "good.appdata.xml", Problems: []types.Problem{}},
			{Filename: "bad.xml", Problems: []types.Problem{
				{Kind: types.KindFilenameInvalid, Message: "incorrect extension, expected '.appdata.xml'"},
				{Kind: types.KindTagMissing, Message: "<id> is not present", Line: 3, Column: 15},
				{Kind: types.KindTagMissing, Message: "<url> is not present", Line: 3, Column: 15},
			}},
		},
	}
}

func TestFormatProblem(t *testing.T) {
	p := types.Problem{Kind: types.KindTagMissing, Message: "<id> is not present", Line: 4, Column: 2}
	assert.Equal(t, "• tag-missing           : <id> is not present", FormatProblem(p, false))
	assert.Equal(t, "• tag-missing           : <id> is not present [4:2]", FormatProblem(p, true))

	p.Line = 0
	assert.Equal(t, "• tag-missing           : <id> is not present", FormatProblem(p, true))
}

func TestPrintFileReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	report := sampleReport()

	p.PrintFileReport(report.Files[0])
	assert.Equal(t, "good.appdata.xml validated OK.\n", buf.String())

	buf.Reset()
	p.PrintFileReport(report.Files[1])
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "bad.xml 3 problems detected:", lines[0])
	assert.Equal(t, "• filename-invalid      : incorrect extension, expected '.appdata.xml'", lines[1])
	assert.Equal(t, "• tag-missing           : <url> is not present", lines[3])
}

func TestPrintReport_Positions(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.ShowPositions = true
	p.PrintReport(sampleReport())

	out := buf.String()
	assert.Contains(t, out, "good.appdata.xml validated OK.")
	assert.Contains(t, out, "<id> is not present [3:15]")
	assert.NotContains(t, out, "expected '.appdata.xml' [")
}

func TestPrintReport_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.PrintReport(nil)
	p.PrintSummary(nil)
	assert.Empty(t, buf.String())
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSummary(sampleReport())

	out := buf.String()
	assert.Contains(t, out, "VALIDATION SUMMARY")
	assert.Contains(t, out, "Files:      2 (1 valid)")
	assert.Contains(t, out, "Problems:   3")
	assert.Contains(t, out, "tag-missing          2")
	assert.Less(t, strings.Index(out, "tag-missing"), strings.Index(out, "filename-invalid"))
}

func TestWriteJSON_MatchesReportSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	assert.NoError(t, schemas.ValidateBytes(schemas.ReportSchema, buf.Bytes()))

	var decoded types.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, types.KindTagMissing, decoded.Files[1].Problems[1].Kind)
	assert.Equal(t, 3, decoded.Files[1].Problems[1].Line)
	assert.Contains(t, buf.String(), `"kind": "filename-invalid"`)
}
