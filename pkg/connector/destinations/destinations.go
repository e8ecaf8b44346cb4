// Package destinations registers every destination connector.
package destinations

import (
	// Import all destination connectors to trigger init() registration
	_ "github.com/ajitpratap0/colconv/pkg/connector/destinations/columnar"
	_ "github.com/ajitpratap0/colconv/pkg/connector/destinations/csv"
	_ "github.com/ajitpratap0/colconv/pkg/connector/destinations/json"
)
