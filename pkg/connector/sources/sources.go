// Package sources registers every source connector.
package sources

import (
	// Import all source connectors to trigger init() registration
	_ "github.com/ajitpratap0/colconv/pkg/connector/sources/columnar"
	_ "github.com/ajitpratap0/colconv/pkg/connector/sources/csv"
	_ "github.com/ajitpratap0/colconv/pkg/connector/sources/json"
	_ "github.com/ajitpratap0/colconv/pkg/connector/sources/postgresql"
	_ "github.com/ajitpratap0/colconv/pkg/connector/sources/sqldb"
)
