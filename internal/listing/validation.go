package listing

import (
	"sort"
	"strings"

	"github.com/fjod/tradehub/internal/domain"
)

type Field string

const (
	FieldCategory    Field = "category"
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldPrice       Field = "price"
	FieldCondition   Field = "condition"
	FieldLocation    Field = "location"
)

const (
	msgCategory    = "Please select a category"
	msgTitle       = "Title is required"
	msgDescription = "Description is required"
	msgPrice       = "Valid price is required"
	msgCondition   = "Condition is required"
	msgLocation    = "Location is required"
)

// ValidationError carries one message per invalid field.
// It matches domain.ErrValidationFailed with errors.Is.
type ValidationError struct {
	Fields map[Field]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[Field(k)]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == domain.ErrValidationFailed
}
