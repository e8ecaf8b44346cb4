package csv

import (
	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterSource("csv", NewCSVSource)

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:        "csv",
		Type:        core.ConnectorTypeSource,
		Description: "Delimited text file, optionally compressed",
		Capabilities: []string{
			"streaming",
			"compression",
			"typed_header",
		},
		Options: map[string]string{
			"path":            "file to read, - for stdin",
			"delimiter":       "field separator, default ,",
			"has_header":      "first line names the columns",
			"columns":         "name and type of each column",
			"compression":     "none, auto, gzip, zstd, s2, snappy or lz4",
			"fallback_values": "annotations read back as the sentinel of a typed column, default N/A",
		},
	})
}
