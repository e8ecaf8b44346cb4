package columnar

import (
	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/connector/registry"
	"github.com/ajitpratap0/colconv/pkg/formats/columnar"
)

func init() {
	for _, format := range columnar.Formats {
		info := columnar.GetFormatInfo(format)
		_ = registry.RegisterDestination(string(format), NewColumnarDestination)
		_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
			Name:        string(format),
			Type:        core.ConnectorTypeDestination,
			Description: info.Name + " file (" + info.FileExtension + ")",
			Capabilities: []string{
				"typed_columns",
				"annotations",
				"batching",
			},
			Options: map[string]string{
				"path":        "file to write, - for stdout",
				"annotations": "add a <column>_annotation text column per column",
				"codec":       "block compression inside the file",
				"compression": "whole-file compression, none by default",
			},
		})
	}
}
