package config_test

import (
	"fmt"

	"github.com/ajitpratap0/colconv/pkg/config"
)

// ExampleNewDefault shows the defaults every configuration starts from.
func ExampleNewDefault() {
	cfg := config.NewDefault()

	fmt.Printf("Batch Size: %d\n", cfg.Pipeline.BatchSize)
	fmt.Printf("Locale: %s\n", cfg.Locale)
	fmt.Printf("Time Zone: %s\n", cfg.TimeZone)

	// Output:
	// Batch Size: 1000
	// Locale: invariant
	// Time Zone: UTC
}

// ExampleConfig_Validate shows how to validate a configuration before
// using it.
func ExampleConfig_Validate() {
	cfg := config.NewDefault()
	cfg.Source.Type = "csv"
	cfg.Destination.Type = "json"

	fmt.Println(cfg.Validate())

	cfg.Conversions = []config.ConversionConfig{{Column: "amount", ConvertTo: "double"}}
	fmt.Println(cfg.Validate())

	// Output:
	// config: at least one conversion is required
	// <nil>
}
