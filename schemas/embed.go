// Package schemas holds the JSON Schemas for rule files and validation reports.
package schemas

import "embed"

// Schema file names.
const (
	RulesSchema  = "rules.schema.json"
	ReportSchema = "report.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Read returns the raw schema document called name.
func Read(name string) ([]byte, error) {
	return files.ReadFile(name)
}
