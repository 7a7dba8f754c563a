package compose

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"slices"

	"github.com/hugsylabs/hugsy/internal/config"
)

// DriftType represents the type of settings drift
type DriftType string

const (
	DriftMissing DriftType = "missing" // Settings file does not exist
	DriftChanged DriftType = "changed" // Key differs from the composed value
	DriftAbsent  DriftType = "absent"  // Composed key is not in the file
	DriftExtra   DriftType = "extra"   // Key in the file that compose does not produce
)

// DriftItem represents a single drift issue
type DriftItem struct {
	Type DriftType
	Key  string
}

// String returns a one-line description of the issue
func (d DriftItem) String() string {
	if d.Key == "" {
		return string(d.Type)
	}
	return fmt.Sprintf("%s: %s", d.Type, d.Key)
}

// DriftReport contains all drift issues for a settings file
type DriftReport struct {
	Path   string
	Issues []DriftItem
}

// HasDrift returns true if there are any issues
func (r *DriftReport) HasDrift() bool {
	return len(r.Issues) > 0
}

// IssuesByType groups issues by drift type
func (r *DriftReport) IssuesByType() map[DriftType][]DriftItem {
	result := make(map[DriftType][]DriftItem)
	for _, issue := range r.Issues {
		result[issue.Type] = append(result[issue.Type], issue)
	}
	return result
}

// Strings returns the issues as text lines
func (r *DriftReport) Strings() []string {
	lines := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		lines = append(lines, issue.String())
	}
	return lines
}

// DetectDrift compares the composed settings with the file at path, key by key
func DetectDrift(path string, composed *config.Settings) (*DriftReport, error) {
	report := &DriftReport{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			report.Issues = append(report.Issues, DriftItem{Type: DriftMissing})
			return report, nil
		}
		return nil, err
	}

	actual, err := decodeTopLevel(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	want, err := json.Marshal(composed)
	if err != nil {
		return nil, err
	}
	expected, err := decodeTopLevel(want)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(expected)+len(actual))
	for k := range expected {
		keys = append(keys, k)
	}
	for k := range actual {
		if _, ok := expected[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	for _, key := range keys {
		e, inExpected := expected[key]
		a, inActual := actual[key]
		switch {
		case !inActual:
			report.Issues = append(report.Issues, DriftItem{Type: DriftAbsent, Key: key})
		case !inExpected:
			report.Issues = append(report.Issues, DriftItem{Type: DriftExtra, Key: key})
		case !reflect.DeepEqual(e, a):
			report.Issues = append(report.Issues, DriftItem{Type: DriftChanged, Key: key})
		}
	}

	return report, nil
}

func decodeTopLevel(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
