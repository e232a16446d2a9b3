package export

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/contract_export.json
var defaultSchema []byte

// ErrSchemaViolation is returned when a record does not match the export schema
var ErrSchemaViolation = errors.New("export does not match schema")

// Config configures an Exporter
type Config struct {
	// SchemaPath names a JSON Schema file; relative paths resolve under ConfigDir.
	// Empty selects the built-in schema.
	SchemaPath string
	ConfigDir  string

	// Destination is a directory, an s3://bucket/prefix URL, or empty to skip writing
	Destination string
}

// Result is a validated export
type Result struct {
	Location string // empty when nothing was written
	Data     []byte
}

// Exporter validates records against a JSON Schema and writes them to a sink
type Exporter struct {
	schema *jsonschema.Schema
	sink   Sink
}

// New creates an exporter with the sink selected by cfg.Destination
func New(ctx context.Context, cfg Config) (*Exporter, error) {
	sink, err := NewSink(ctx, cfg.Destination)
	if err != nil {
		return nil, err
	}
	return NewWithSink(cfg, sink)
}

// NewWithSink creates an exporter that writes to sink; a nil sink only validates
func NewWithSink(cfg Config, sink Sink) (*Exporter, error) {
	schema, err := compileSchema(cfg)
	if err != nil {
		return nil, err
	}
	return &Exporter{schema: schema, sink: sink}, nil
}

// Export fills in the record identity, validates it and writes it to the sink
func (e *Exporter) Export(ctx context.Context, rec *Record) (*Result, error) {
	if rec == nil {
		return nil, errors.New("nil export record")
	}
	if rec.SchemaVersion == "" {
		rec.SchemaVersion = SchemaVersion
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.GeneratedAt.IsZero() {
		rec.GeneratedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}

	if err := e.Validate(data); err != nil {
		return nil, err
	}

	result := &Result{Data: data}
	if e.sink == nil {
		return result, nil
	}

	location, err := e.sink.Write(ctx, rec.ID+".json", data)
	if err != nil {
		return nil, fmt.Errorf("write export: %w", err)
	}
	result.Location = location

	log.Info().Str("export_id", rec.ID).Str("location", location).Int("bytes", len(data)).Msg("export written")
	return result, nil
}

// Validate checks raw JSON against the export schema
func (e *Exporter) Validate(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrSchemaViolation, err)
	}
	if err := e.schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return nil
}

func compileSchema(cfg Config) (*jsonschema.Schema, error) {
	raw := defaultSchema
	if cfg.SchemaPath != "" {
		path := cfg.SchemaPath
		if !filepath.IsAbs(path) && cfg.ConfigDir != "" {
			path = filepath.Join(cfg.ConfigDir, path)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
		raw = b
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}
