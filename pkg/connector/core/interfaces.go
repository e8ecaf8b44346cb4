// Package core defines the contracts between the pipeline and the
// connectors rows are read from and written to.
package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/colconv/pkg/config"
	"github.com/ajitpratap0/colconv/pkg/conversion"
	"github.com/ajitpratap0/colconv/pkg/models"
)

// ConnectorType represents the type of connector
type ConnectorType string

const (
	ConnectorTypeSource      ConnectorType = "source"
	ConnectorTypeDestination ConnectorType = "destination"
)

// Settings is everything a connector factory receives.
type Settings struct {
	// Config is the source or destination section of the run config.
	Config config.ConnectorConfig
	// Env renders and parses text values.
	Env *conversion.Environment
	// Logger is scoped to the connector.
	Logger *zap.Logger
}

// NewSettings builds the settings of one connector.
func NewSettings(cfg config.ConnectorConfig, env *conversion.Environment, logger *zap.Logger) Settings {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Settings{
		Config: cfg,
		Env:    env,
		Logger: logger.With(zap.String("connector", cfg.Type)),
	}.WithDefaults()
}

// WithDefaults replaces a nil environment or logger.
func (s Settings) WithDefaults() Settings {
	if s.Env == nil {
		s.Env = conversion.DefaultEnvironment()
	}
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	return s
}

// Property returns a connector specific setting or def.
func (s Settings) Property(key, def string) string {
	if v, ok := s.Config.Properties[key]; ok && v != "" {
		return v
	}
	return def
}

// Source is the interface that all source connectors must implement.
//
// Open discovers the columns, so Header is valid only after Open returns.
// Read returns the values of the next row in header order and io.EOF once
// the input is exhausted. Values use the Go type of their column type or
// nil.
type Source interface {
	Open(ctx context.Context) error
	Header() *models.Header
	Read(ctx context.Context) ([]any, error)
	Close(ctx context.Context) error
}

// Destination is the interface that all destination connectors must
// implement.
//
// Open receives the final header, after every conversion added its column.
// Write is called with batches in input order; rows are recycled once it
// returns.
type Destination interface {
	Open(ctx context.Context, header *models.Header) error
	Write(ctx context.Context, rows []*models.Row) error
	Close(ctx context.Context) error
}

// DeclareTypes overrides the types of discovered columns with the columns
// declared in the connector configuration, matched by name.
func DeclareTypes(discovered, declared []models.Column) []models.Column {
	if len(declared) == 0 {
		return discovered
	}
	types := make(map[string]models.ScalarType, len(declared))
	for _, c := range declared {
		types[c.Name] = c.Type
	}
	out := make([]models.Column, len(discovered))
	for i, c := range discovered {
		if t, ok := types[c.Name]; ok {
			c.Type = t
		}
		out[i] = c
	}
	return out
}
