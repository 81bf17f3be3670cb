package devices

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"device-registry/internal/storage"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

//go:embed schema/device-seed-v1.json
var seedSchemaJSON string

//go:embed seed/sample-devices.json
var sampleDevicesJSON []byte

type SeedValidator struct {
	schema *jsonschema.Schema
}

func NewSeedValidator() (*SeedValidator, error) {
	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource("device-seed-v1.json",
		strings.NewReader(seedSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile("device-seed-v1.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &SeedValidator{schema: schema}, nil
}

func (v *SeedValidator) Validate(data []byte) error {
	var fixture interface{}
	if err := json.Unmarshal(data, &fixture); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := v.schema.Validate(fixture); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}

// SeedSampleDevices inserts the embedded sample devices when the device
// table is empty. One-time seeding on startup, not an ongoing concern.
func SeedSampleDevices(ctx context.Context, store DeviceStore, logger *zap.Logger) error {
	count, err := store.CountDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed to count devices: %w", err)
	}
	if count > 0 {
		logger.Info("Device table already populated, skipping seed")
		return nil
	}

	validator, err := NewSeedValidator()
	if err != nil {
		return fmt.Errorf("failed to create seed validator: %w", err)
	}

	if err := validator.Validate(sampleDevicesJSON); err != nil {
		return fmt.Errorf("seed fixture rejected: %w", err)
	}

	var seeds []*storage.Device
	if err := json.Unmarshal(sampleDevicesJSON, &seeds); err != nil {
		return fmt.Errorf("failed to unmarshal seed fixture: %w", err)
	}

	for _, d := range seeds {
		if _, err := store.InsertDevice(ctx, d); err != nil {
			return fmt.Errorf("failed to insert seed device %q: %w", d.Name, err)
		}
	}

	logger.Info("Seeded sample devices", zap.Int("count", len(seeds)))
	return nil
}
