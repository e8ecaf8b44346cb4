package json

import (
	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterSource("json", NewJSONSource)

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:        "json",
		Type:        core.ConnectorTypeSource,
		Description: "JSON array or line-delimited JSON file",
		Capabilities: []string{
			"streaming",
			"compression",
			"schema_inference",
		},
		Options: map[string]string{
			"path":              "file to read, - for stdin",
			"columns":           "name and type of each column, inferred from the first object when empty",
			"compression":       "none, auto, gzip, zstd, s2, snappy or lz4",
			"properties.format": "auto, array or lines",
		},
	})
}
