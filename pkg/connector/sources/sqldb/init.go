package sqldb

import (
	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterSource(string(MySQL), NewMySQLSource)
	_ = registry.RegisterSource(string(Snowflake), NewSnowflakeSource)

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:         string(MySQL),
		Type:         core.ConnectorTypeSource,
		Description:  "MySQL query through database/sql",
		Capabilities: []string{"streaming", "custom_queries", "schema_discovery"},
		Options: map[string]string{
			"dsn":                        "go-sql-driver/mysql data source name",
			"query":                      "SQL query to read",
			"columns":                    "declared types overriding the discovered ones",
			"properties.max_connections": "pool size, default 4",
		},
	})

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:         string(Snowflake),
		Type:         core.ConnectorTypeSource,
		Description:  "Snowflake query through database/sql",
		Capabilities: []string{"streaming", "custom_queries", "schema_discovery"},
		Options: map[string]string{
			"dsn":   "gosnowflake data source name",
			"query": "SQL query to read",
			"properties.account, user, password, database, schema, warehouse, role": "used to build the dsn when it is empty",
			"properties.max_connections":                                            "pool size, default 4",
		},
	})
}
