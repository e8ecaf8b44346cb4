package conversion

import (
	"github.com/ajitpratap0/colconv/pkg/models"
)

// IsSupported reports whether values of source can be converted to
// target. It is false for identity pairs and invalid types.
func IsSupported(source, target models.ScalarType) bool {
	_, ok := rules[Pair{Source: source, Target: target}]
	return ok
}

// Targets lists the types source converts to, in declaration order.
func Targets(source models.ScalarType) []models.ScalarType {
	var out []models.ScalarType
	for _, t := range models.ScalarTypes {
		if IsSupported(source, t) {
			out = append(out, t)
		}
	}
	return out
}

// Matrix returns the allowed targets of every scalar type.
func Matrix() map[models.ScalarType][]models.ScalarType {
	m := make(map[models.ScalarType][]models.ScalarType, len(models.ScalarTypes))
	for _, s := range models.ScalarTypes {
		m[s] = Targets(s)
	}
	return m
}
