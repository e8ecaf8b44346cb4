package columnar

import (
	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/connector/registry"
	"github.com/ajitpratap0/colconv/pkg/formats/columnar"
)

func init() {
	for _, format := range columnar.Formats {
		info := columnar.GetFormatInfo(format)
		_ = registry.RegisterSource(string(format), NewColumnarSource)
		_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
			Name:         string(format),
			Type:         core.ConnectorTypeSource,
			Description:  info.Name + " file (" + info.FileExtension + ")",
			Capabilities: []string{"typed_columns"},
			Options: map[string]string{
				"path":        "file to read, - for stdin",
				"columns":     "override the stored column types",
				"compression": "whole-file compression, none by default",
			},
		})
	}
}
