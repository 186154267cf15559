// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, validation and the client can all import types
// without depending on each other.
package types

import "time"

// Student represents one row of the students table.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — the wire name. Bodies use the persisted snake_case
//     column names so a record looks the same in the API and in the table.
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package (see internal/validate for the custom tags).
//
// Latitude and Longitude are pointers because the columns are nullable:
// a record may be created without coordinates.
type Student struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"            validate:"notblank"`
	Email          string    `json:"email"           validate:"looseemail"`
	GraduationYear int       `json:"graduation_year" validate:"gte=1900,lte=2100"`
	PhoneNumber    string    `json:"phone_number"    validate:"phone"`
	GPA            float64   `json:"gpa"             validate:"gte=0,lte=4"`
	City           string    `json:"city"            validate:"notblank"`
	State          string    `json:"state"           validate:"notblank"`
	Latitude       *float64  `json:"latitude"        validate:"omitempty,gte=-90,lte=90"`
	Longitude      *float64  `json:"longitude"       validate:"omitempty,gte=-180,lte=180"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StudentInput is the body of a create request.
//
// Every field is a pointer so "absent" (nil) can be told apart from a zero
// value: a GPA of 0.0 is a real GPA, a missing GPA is a missing field.
type StudentInput struct {
	Name           *string  `json:"name"`
	Email          *string  `json:"email"`
	GraduationYear *int     `json:"graduation_year"`
	PhoneNumber    *string  `json:"phone_number"`
	GPA            *float64 `json:"gpa"`
	City           *string  `json:"city"`
	State          *string  `json:"state"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
}

// Student converts a complete input into a record without id or timestamps.
// Nil required fields become zero values; callers check MissingFields first.
func (in StudentInput) Student() Student {
	s := Student{
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}
	if in.Name != nil {
		s.Name = *in.Name
	}
	if in.Email != nil {
		s.Email = *in.Email
	}
	if in.GraduationYear != nil {
		s.GraduationYear = *in.GraduationYear
	}
	if in.PhoneNumber != nil {
		s.PhoneNumber = *in.PhoneNumber
	}
	if in.GPA != nil {
		s.GPA = *in.GPA
	}
	if in.City != nil {
		s.City = *in.City
	}
	if in.State != nil {
		s.State = *in.State
	}
	return s
}

// StudentPatch is the body of a partial update. Only non-nil fields are
// written. id and the timestamps are deliberately absent: they cannot be
// changed by a client.
type StudentPatch struct {
	Name           *string  `json:"name,omitempty"`
	Email          *string  `json:"email,omitempty"`
	GraduationYear *int     `json:"graduation_year,omitempty"`
	PhoneNumber    *string  `json:"phone_number,omitempty"`
	GPA            *float64 `json:"gpa,omitempty"`
	City           *string  `json:"city,omitempty"`
	State          *string  `json:"state,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
}

// Fields lists the json names of the fields present in the patch, in
// column order.
func (p StudentPatch) Fields() []string {
	var fields []string
	add := func(present bool, name string) {
		if present {
			fields = append(fields, name)
		}
	}
	add(p.Name != nil, "name")
	add(p.Email != nil, "email")
	add(p.GraduationYear != nil, "graduation_year")
	add(p.PhoneNumber != nil, "phone_number")
	add(p.GPA != nil, "gpa")
	add(p.City != nil, "city")
	add(p.State != nil, "state")
	add(p.Latitude != nil, "latitude")
	add(p.Longitude != nil, "longitude")
	return fields
}

// IsEmpty reports whether the patch carries no field at all.
func (p StudentPatch) IsEmpty() bool { return len(p.Fields()) == 0 }

// Apply returns a copy of s with every present patch field written over it.
func (p StudentPatch) Apply(s Student) Student {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.GraduationYear != nil {
		s.GraduationYear = *p.GraduationYear
	}
	if p.PhoneNumber != nil {
		s.PhoneNumber = *p.PhoneNumber
	}
	if p.GPA != nil {
		s.GPA = *p.GPA
	}
	if p.City != nil {
		s.City = *p.City
	}
	if p.State != nil {
		s.State = *p.State
	}
	if p.Latitude != nil {
		s.Latitude = p.Latitude
	}
	if p.Longitude != nil {
		s.Longitude = p.Longitude
	}
	return s
}

// Filter is the set of optional search and sort parameters for a list
// query. A nil pointer means "no constraint".
type Filter struct {
	Search         *string
	MinGPA         *float64
	MaxGPA         *float64
	GraduationYear *int
	City           *string
	State          *string

	// SortBy is one of name, gpa, graduationYear, city, state. Anything
	// else sorts by name.
	SortBy string

	// SortOrder "desc" sorts descending; any other value ascending.
	SortOrder string
}
