package experience

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/workexp/workexp-api/pkg/validation"
)

const dateOrderTag = "dateorder"

// NewValidator returns a validator with the experience rules registered.
func NewValidator() *validation.Validator {
	v := validation.New()
	v.RegisterStructValidation(dateOrder, dateOrderTag, "End date cannot be earlier than start date", Experience{})
	return v
}

// dateOrder enforces endDate >= startDate unless the role is current.
func dateOrder(sl validator.StructLevel) {
	e := sl.Current().Interface().(Experience)
	if e.Current || e.EndDate == nil || e.StartDate.IsZero() {
		return
	}
	if e.EndDate.Before(e.StartDate) {
		sl.ReportError(e.EndDate, "endDate", "EndDate", dateOrderTag, "")
	}
}

// Apply merges in onto e. Date strings that do not parse are reported as
// field errors; the remaining rules are checked by the validator afterwards.
func Apply(e *Experience, in Input) validation.Errors {
	var errs validation.Errors

	if in.Company != nil {
		e.Company = strings.TrimSpace(*in.Company)
	}
	switch {
	case in.Position != nil:
		e.Position = strings.TrimSpace(*in.Position)
	case in.Title != nil:
		e.Position = strings.TrimSpace(*in.Title)
	}
	if in.Location != nil {
		e.Location = strings.TrimSpace(*in.Location)
	}
	if in.StartDate.Set {
		e.StartDate = time.Time{}
		if !in.StartDate.Empty() {
			t, err := ParseDate(in.StartDate.Raw)
			if err != nil {
				errs.Add("startDate", "Start date must be a valid date")
			} else {
				e.StartDate = t
			}
		}
	}
	if in.EndDate.Set {
		e.EndDate = nil
		if !in.EndDate.Empty() {
			t, err := ParseDate(in.EndDate.Raw)
			if err != nil {
				errs.Add("endDate", "End date must be a valid date")
			} else {
				e.EndDate = &t
			}
		}
	}
	switch {
	case in.Current != nil:
		e.Current = *in.Current
	case in.CurrentlyWorking != nil:
		e.Current = *in.CurrentlyWorking
	}
	if in.Description != nil {
		e.Description = strings.TrimSpace(*in.Description)
	}
	if in.Skills != nil {
		skills := make([]string, 0, len(*in.Skills))
		for _, s := range *in.Skills {
			skills = append(skills, strings.TrimSpace(s))
		}
		e.Skills = skills
	}
	if in.Archived != nil {
		e.Archived = *in.Archived
	}
	if e.Skills == nil {
		e.Skills = []string{}
	}
	return errs
}
