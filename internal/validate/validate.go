// Package validate enforces the field rules of a student record.
//
// The rules live as validate:"..." tags on types.Student and are checked by
// go-playground/validator. Three tags are registered here because the
// built-in ones are stricter than the rules the form has always applied:
//
//	notblank   — non-empty after trimming whitespace
//	looseemail — contains \S+@\S+\.\S+ somewhere in the value
//	phone      — exactly DDD-DDD-DDDD
//
// Everything here is pure: functions return a description of the violations
// and never touch state.
package validate

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-records/internal/apperrors"
	"github.com/aanand-mishra/student-records/internal/types"
)

// RequiredFields are the fields a create request must carry, in the order
// they are reported.
var RequiredFields = []string{
	"name",
	"email",
	"graduation_year",
	"phone_number",
	"gpa",
	"city",
	"state",
}

// Messages holds the text reported for each field when its rule fails.
var Messages = map[string]string{
	"name":            "Name is required.",
	"email":           "Invalid email address.",
	"graduation_year": "Enter a valid graduation year.",
	"phone_number":    "Phone number must be in format 123-456-7890.",
	"gpa":             "GPA must be between 0.0 and 4.0.",
	"city":            "City is required.",
	"state":           "State is required.",
	"latitude":        "Latitude must be between -90 and 90.",
	"longitude":       "Longitude must be between -180 and 180.",
}

// whitespace is the set String.prototype.trim and \s agree on in browsers,
// so a value the form accepts is accepted here too.
const whitespace = `\t\n\x{000B}\f\r \x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}`

var (
	emailRe = regexp.MustCompile(`[^` + whitespace + `]+@[^` + whitespace + `]+\.[^` + whitespace + `]+`)
	phoneRe = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)
)

func isSpace(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\v', r == '\f', r == '\r', r == ' ':
		return true
	case r == 0x00A0, r == 0x1680, r >= 0x2000 && r <= 0x200A:
		return true
	case r == 0x2028, r == 0x2029, r == 0x202F, r == 0x205F, r == 0x3000, r == 0xFEFF:
		return true
	}
	return false
}

// Blank reports whether s is empty after trimming whitespace.
func Blank(s string) bool { return strings.TrimFunc(s, isSpace) == "" }

// Email reports whether s has the basic local@domain.tld shape.
func Email(s string) bool { return emailRe.MatchString(s) }

// Phone reports whether s is exactly DDD-DDD-DDDD.
func Phone(s string) bool { return phoneRe.MatchString(s) }

// validate is safe for concurrent use; validator caches struct metadata,
// so one instance is shared by every request.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json names ("graduation_year") instead of Go names
	// ("GraduationYear") so errors line up with the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return !Blank(fl.Field().String())
	}))
	must(v.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return Email(fl.Field().String())
	}))
	must(v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return Phone(fl.Field().String())
	}))

	return v
}

// MissingFields returns the required fields that are absent or an empty
// string, in RequiredFields order. Whitespace-only strings are not missing;
// they fail the notblank rule instead.
func MissingFields(in types.StudentInput) []string {
	present := map[string]bool{
		"name":            in.Name != nil && *in.Name != "",
		"email":           in.Email != nil && *in.Email != "",
		"graduation_year": in.GraduationYear != nil,
		"phone_number":    in.PhoneNumber != nil && *in.PhoneNumber != "",
		"gpa":             in.GPA != nil,
		"city":            in.City != nil && *in.City != "",
		"state":           in.State != nil && *in.State != "",
	}

	var missing []string
	for _, f := range RequiredFields {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// Record checks every rule on every field of s and returns one message per
// violating field. An empty map means s is valid.
func Record(s types.Student) map[string]string {
	errs := map[string]string{}

	err := validate.Struct(s)
	if err == nil {
		return errs
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// InvalidValidationError only happens on a nil or non-struct
		// argument, which the signature rules out.
		panic(err)
	}
	for _, fe := range verrs {
		field := fe.Field()
		if msg, ok := Messages[field]; ok {
			errs[field] = msg
		} else {
			errs[field] = field + " is invalid."
		}
	}
	return errs
}

// Create runs the create-path checks: first required fields, then the
// rules. It returns the record to insert, a *apperrors.MissingFieldsError,
// or an apperrors.FieldErrors.
func Create(in types.StudentInput) (types.Student, error) {
	if missing := MissingFields(in); len(missing) > 0 {
		return types.Student{}, &apperrors.MissingFieldsError{Fields: missing}
	}

	s := in.Student()
	if errs := Record(s); len(errs) > 0 {
		return types.Student{}, apperrors.FieldErrors(errs)
	}
	return s, nil
}

// Patch applies the rules to the fields present in p and ignores the rest.
func Patch(p types.StudentPatch) map[string]string {
	all := Record(p.Apply(types.Student{}))

	errs := map[string]string{}
	for _, f := range p.Fields() {
		if msg, ok := all[f]; ok {
			errs[f] = msg
		}
	}
	return errs
}
