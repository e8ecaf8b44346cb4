package conversion

import (
	"fmt"
	"strings"

	"github.com/ajitpratap0/colconv/pkg/models"
)

// DefaultFallbackValue is the annotation attached to a failed conversion
// when none is configured.
const DefaultFallbackValue = "N/A"

// Request describes one column conversion.
//
// Optional fields are filled by Resolve:
//
//	TargetColumnName  "<source> (as <target>)"
//	FallbackValue     DefaultFallbackValue
//	Environment       DefaultEnvironment()
type Request struct {
	Source           models.Column
	Target           models.ScalarType
	TargetColumnName string
	FallbackValue    string
	Environment      *Environment
}

// DerivedColumnName is the default name of a converted column.
func DerivedColumnName(source models.Column, target models.ScalarType) string {
	return fmt.Sprintf("%s (as %s)", source.Name, target)
}

// derivedColumnNameAs names the converted column after the type name the
// caller wrote. Only DurationAlias differs from the canonical name; any
// other spelling uses the canonical one.
func derivedColumnNameAs(source models.Column, target models.ScalarType, typeName string) string {
	if target == models.Duration && strings.EqualFold(strings.TrimSpace(typeName), models.DurationAlias) {
		return fmt.Sprintf("%s (as %s)", source.Name, models.DurationAlias)
	}
	return DerivedColumnName(source, target)
}

// Resolve returns a copy of r with every default applied.
func (r Request) Resolve() Request {
	if r.TargetColumnName == "" {
		r.TargetColumnName = DerivedColumnName(r.Source, r.Target)
	}
	if r.FallbackValue == "" {
		r.FallbackValue = DefaultFallbackValue
	}
	if r.Environment == nil {
		r.Environment = DefaultEnvironment()
	}
	return r
}
