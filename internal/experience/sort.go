package experience

import (
	"fmt"
	"strings"
)

// DefaultSort lists the most recent roles first.
const DefaultSort = "-startDate"

var sortFields = map[string]bool{
	"startDate": true,
	"endDate":   true,
	"company":   true,
	"position":  true,
	"createdAt": true,
	"updatedAt": true,
}

// Sort is a single sort key. Field is the bson/json field name.
type Sort struct {
	Field string
	Desc  bool
}

// ParseSort parses "field" or "-field". An empty string yields DefaultSort.
func ParseSort(s string) (Sort, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultSort
	}
	desc := strings.HasPrefix(s, "-")
	field := strings.TrimPrefix(s, "-")
	if !sortFields[field] {
		return Sort{}, fmt.Errorf("unsupported sort field %q", field)
	}
	return Sort{Field: field, Desc: desc}, nil
}

func (s Sort) String() string {
	if s.Desc {
		return "-" + s.Field
	}
	return s.Field
}

// Direction is the Mongo sort direction.
func (s Sort) Direction() int {
	if s.Desc {
		return -1
	}
	return 1
}
