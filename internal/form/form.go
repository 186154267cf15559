// Package form models the student entry form used by the command line
// client: every field always has a value, the whole form is validated
// before submit, and an edit sends only the fields that changed.
package form

import (
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/validate"
)

// Values holds one value per form field. Unlike types.StudentInput
// nothing is optional here: an untouched field keeps its default.
type Values struct {
	Name           string
	Email          string
	GraduationYear int
	PhoneNumber    string
	GPA            float64
	City           string
	State          string
	Latitude       float64
	Longitude      float64
}

// Default returns the values of a fresh, empty form.
func Default() Values {
	return Values{GraduationYear: 2025}
}

// FromStudent pre-fills the form with an existing record. Missing
// coordinates show as 0.
func FromStudent(s types.Student) Values {
	v := Values{
		Name:           s.Name,
		Email:          s.Email,
		GraduationYear: s.GraduationYear,
		PhoneNumber:    s.PhoneNumber,
		GPA:            s.GPA,
		City:           s.City,
		State:          s.State,
	}
	if s.Latitude != nil {
		v.Latitude = *s.Latitude
	}
	if s.Longitude != nil {
		v.Longitude = *s.Longitude
	}
	return v
}

// Student converts the form into a record without id or timestamps.
func (v Values) Student() types.Student {
	lat, lon := v.Latitude, v.Longitude
	return types.Student{
		Name:           v.Name,
		Email:          v.Email,
		GraduationYear: v.GraduationYear,
		PhoneNumber:    v.PhoneNumber,
		GPA:            v.GPA,
		City:           v.City,
		State:          v.State,
		Latitude:       &lat,
		Longitude:      &lon,
	}
}

// Validate checks every field and returns one message per invalid field.
// The form must not be submitted while the map is non-empty.
func Validate(v Values) map[string]string {
	return validate.Record(v.Student())
}

// Input is the create request body for the form: every field is sent.
func Input(v Values) types.StudentInput {
	s := v.Student()
	return types.StudentInput{
		Name:           &s.Name,
		Email:          &s.Email,
		GraduationYear: &s.GraduationYear,
		PhoneNumber:    &s.PhoneNumber,
		GPA:            &s.GPA,
		City:           &s.City,
		State:          &s.State,
		Latitude:       s.Latitude,
		Longitude:      s.Longitude,
	}
}

// Diff returns a patch holding only the fields of v that differ from
// current as the form displayed it. An empty patch means there is nothing
// to send.
func Diff(current types.Student, v Values) types.StudentPatch {
	was := FromStudent(current)

	var p types.StudentPatch
	if v.Name != was.Name {
		p.Name = &v.Name
	}
	if v.Email != was.Email {
		p.Email = &v.Email
	}
	if v.GraduationYear != was.GraduationYear {
		p.GraduationYear = &v.GraduationYear
	}
	if v.PhoneNumber != was.PhoneNumber {
		p.PhoneNumber = &v.PhoneNumber
	}
	if v.GPA != was.GPA {
		p.GPA = &v.GPA
	}
	if v.City != was.City {
		p.City = &v.City
	}
	if v.State != was.State {
		p.State = &v.State
	}
	if v.Latitude != was.Latitude {
		p.Latitude = &v.Latitude
	}
	if v.Longitude != was.Longitude {
		p.Longitude = &v.Longitude
	}
	return p
}
