package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sloverify/servicelevels"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed thresholds.schema.json
var thresholdsSchema []byte

const thresholdsSchemaLocation = "./thresholds.schema.json"

var ErrInvalidThresholds = errors.New("invalid thresholds")

// LoadThresholds overrides default limits with {"<metric>": <limit>} pairs.
// Operations and units of the metrics are fixed.
func LoadThresholds(content io.Reader) (servicelevels.Thresholds, error) {
	thresholds := servicelevels.DefaultThresholds()

	raw, readErr := io.ReadAll(content)
	if readErr != nil {
		return thresholds, readErr
	}

	schema, schemaErr := compileThresholdsSchema()
	if schemaErr != nil {
		return thresholds, schemaErr
	}

	document, unmarshalErr := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if unmarshalErr != nil {
		return thresholds, fmt.Errorf("%w: %w", ErrInvalidThresholds, unmarshalErr)
	}
	if validationErr := schema.Validate(document); validationErr != nil {
		return thresholds, fmt.Errorf("%w: %w", ErrInvalidThresholds, validationErr)
	}

	var limits map[string]float64
	if decodeErr := json.Unmarshal(raw, &limits); decodeErr != nil {
		return thresholds, fmt.Errorf("%w: %w", ErrInvalidThresholds, decodeErr)
	}

	names := make([]string, 0, len(limits))
	for name := range limits {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		var limitErr error
		thresholds, limitErr = thresholds.WithLimit(name, limits[name])
		if limitErr != nil {
			return thresholds, fmt.Errorf("%w: %w", ErrInvalidThresholds, limitErr)
		}
	}
	return thresholds, nil
}

func LoadThresholdsFile(path string) (servicelevels.Thresholds, error) {
	if path == "" {
		return servicelevels.DefaultThresholds(), nil
	}
	file, openErr := os.Open(path)
	if openErr != nil {
		return servicelevels.DefaultThresholds(), openErr
	}
	defer file.Close()

	return LoadThresholds(file)
}

func compileThresholdsSchema() (*jsonschema.Schema, error) {
	document, unmarshalErr := jsonschema.UnmarshalJSON(bytes.NewReader(thresholdsSchema))
	if unmarshalErr != nil {
		return nil, unmarshalErr
	}
	compiler := jsonschema.NewCompiler()
	if addErr := compiler.AddResource(thresholdsSchemaLocation, document); addErr != nil {
		return nil, addErr
	}
	return compiler.Compile(thresholdsSchemaLocation)
}
