package experience

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Experience is a work-history record.
type Experience struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Company     string             `json:"company" bson:"company" validate:"required"`
	Position    string             `json:"position" bson:"position" validate:"required"`
	Location    string             `json:"location,omitempty" bson:"location,omitempty"`
	StartDate   time.Time          `json:"startDate" bson:"startDate" validate:"required"`
	EndDate     *time.Time         `json:"endDate,omitempty" bson:"endDate,omitempty"`
	Current     bool               `json:"current" bson:"current"`
	Description string             `json:"description" bson:"description"`
	Skills      []string           `json:"skills" bson:"skills" validate:"dive,required"`
	Archived    bool               `json:"archived" bson:"archived"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Clone returns a deep copy so in-memory stores never share slices or
// pointers with callers.
func (e *Experience) Clone() *Experience {
	c := *e
	if e.EndDate != nil {
		t := *e.EndDate
		c.EndDate = &t
	}
	if e.Skills != nil {
		c.Skills = append([]string(nil), e.Skills...)
	}
	return &c
}

// DateField is a JSON date that remembers whether the key was present.
// A present null (or empty string) clears the value.
type DateField struct {
	Set bool
	Raw string
}

func (d *DateField) UnmarshalJSON(b []byte) error {
	d.Set = true
	if string(b) == "null" {
		d.Raw = ""
		return nil
	}
	if err := json.Unmarshal(b, &d.Raw); err != nil {
		return fmt.Errorf("date must be a string")
	}
	d.Raw = strings.TrimSpace(d.Raw)
	return nil
}

// Empty reports whether the field was sent without a value.
func (d DateField) Empty() bool { return d.Raw == "" }

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the time in UTC.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// Input is the request body for create and update. Nil fields are left
// untouched on update. title and currentlyWorking are accepted as aliases
// for position and current.
type Input struct {
	Company          *string   `json:"company"`
	Position         *string   `json:"position"`
	Title            *string   `json:"title"`
	Location         *string   `json:"location"`
	StartDate        DateField `json:"startDate"`
	EndDate          DateField `json:"endDate"`
	Current          *bool     `json:"current"`
	CurrentlyWorking *bool     `json:"currentlyWorking"`
	Description      *string   `json:"description"`
	Skills           *[]string `json:"skills"`
	Archived         *bool     `json:"archived"`
}

// SkillCount is one row of the skills summary.
type SkillCount struct {
	Skill string `json:"skill" bson:"_id"`
	Count int    `json:"count" bson:"count"`
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Company  string
	Position string
	Query    string
	Archived *bool
	Sort     Sort
	Page     int
	Limit    int
}

// Paginated reports whether skip/limit applies.
func (f Filter) Paginated() bool { return f.Limit > 0 }

// Skip is the number of records before the requested page. Pages past
// the addressable range saturate at math.MaxInt instead of wrapping.
func (f Filter) Skip() int {
	if !f.Paginated() || f.Page < 1 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.Limit {
		return math.MaxInt
	}
	return (f.Page - 1) * f.Limit
}
