package json

import (
	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterDestination("json", NewJSONDestination)

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:        "json",
		Type:        core.ConnectorTypeDestination,
		Description: "JSON lines or JSON array file",
		Capabilities: []string{
			"streaming",
			"compression",
			"annotations",
		},
		Options: map[string]string{
			"path":        "file to write, - for stdout",
			"format":      "lines (default) or array",
			"annotations": "add a <column>_annotation key per column",
			"compression": "none, auto, gzip, zstd, s2, snappy or lz4",
		},
	})
}
