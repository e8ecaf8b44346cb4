package csv

import (
	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterDestination("csv", NewCSVDestination)

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:        "csv",
		Type:        core.ConnectorTypeDestination,
		Description: "Delimited text file, optionally compressed",
		Capabilities: []string{
			"streaming",
			"compression",
			"annotations",
		},
		Options: map[string]string{
			"path":         "file to write, - for stdout",
			"delimiter":    "field separator, default ,",
			"has_header":   "write a header line",
			"typed_header": "write header cells as name:Type",
			"compression":  "none, auto, gzip, zstd, s2, snappy or lz4",
		},
	})
}
