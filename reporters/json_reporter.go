package reporters

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sloverify/servicelevels"
)

type JSONReporter struct {
	path string
}

func NewJSONReporter(path string) *JSONReporter {
	return &JSONReporter{path: path}
}

func (j *JSONReporter) Report(_ context.Context, report *servicelevels.Report) error {
	content, marshalErr := json.MarshalIndent(report, "", "  ")
	if marshalErr != nil {
		return marshalErr
	}
	if writeErr := os.WriteFile(j.path, append(content, '\n'), 0o644); writeErr != nil {
		return fmt.Errorf("writing report to %s: %w", j.path, writeErr)
	}
	return nil
}
