package postgresql

import (
	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterSource("postgresql", NewPostgreSQLSource)

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:        "postgresql",
		Type:        core.ConnectorTypeSource,
		Description: "PostgreSQL query through a pgx connection pool",
		Capabilities: []string{
			"streaming",
			"custom_queries",
			"connection_pooling",
			"schema_discovery",
		},
		Options: map[string]string{
			"dsn":                        "PostgreSQL connection string",
			"query":                      "SQL query to read",
			"columns":                    "declared types overriding the discovered ones",
			"properties.table":           "table to read when no query is given",
			"properties.max_connections": "pool size, default 4",
		},
	})
}
