package form_test

import (
	"reflect"
	"testing"

	"github.com/aanand-mishra/student-records/internal/form"
	"github.com/aanand-mishra/student-records/internal/types"
)

func ptr[T any](v T) *T { return &v }

func record() types.Student {
	return types.Student{
		ID:             7,
		Name:           "Alice",
		Email:          "alice@example.com",
		GraduationYear: 2025,
		PhoneNumber:    "123-456-7890",
		GPA:            3.7,
		City:           "Austin",
		State:          "TX",
		Latitude:       ptr(30.27),
		Longitude:      ptr(-97.74),
	}
}

func TestValidate(t *testing.T) {
	if errs := form.Validate(form.FromStudent(record())); len(errs) != 0 {
		t.Fatalf("valid record reported errors: %v", errs)
	}

	v := form.Default()
	errs := form.Validate(v)
	for _, f := range []string{"name", "email", "phone_number", "city", "state"} {
		if _, ok := errs[f]; !ok {
			t.Errorf("empty form: expected error for %s, got %v", f, errs)
		}
	}
	for _, f := range []string{"graduation_year", "gpa", "latitude", "longitude"} {
		if _, ok := errs[f]; ok {
			t.Errorf("empty form: default %s should be valid, got %q", f, errs[f])
		}
	}

	v = form.FromStudent(record())
	v.Latitude = 91
	v.GPA = 4.01
	errs = form.Validate(v)
	if errs["latitude"] != "Latitude must be between -90 and 90." || errs["gpa"] != "GPA must be between 0.0 and 4.0." {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestDiff(t *testing.T) {
	current := record()

	if p := form.Diff(current, form.FromStudent(current)); !p.IsEmpty() {
		t.Fatalf("unchanged form produced %v", p.Fields())
	}

	v := form.FromStudent(current)
	v.City = "Dallas"
	v.GPA = 3.9
	p := form.Diff(current, v)
	if want := []string{"gpa", "city"}; !reflect.DeepEqual(p.Fields(), want) {
		t.Fatalf("fields = %v, want %v", p.Fields(), want)
	}
	if *p.City != "Dallas" || *p.GPA != 3.9 {
		t.Fatalf("unexpected patch values: city=%q gpa=%v", *p.City, *p.GPA)
	}
}

func TestDiff_MissingCoordinates(t *testing.T) {
	current := record()
	current.Latitude, current.Longitude = nil, nil

	if p := form.Diff(current, form.FromStudent(current)); !p.IsEmpty() {
		t.Fatalf("displayed zero coordinates should not count as a change: %v", p.Fields())
	}

	v := form.FromStudent(current)
	v.Longitude = 12.5
	if want := []string{"longitude"}; !reflect.DeepEqual(form.Diff(current, v).Fields(), want) {
		t.Fatalf("fields = %v, want %v", form.Diff(current, v).Fields(), want)
	}
}

func TestInput_SendsEveryField(t *testing.T) {
	in := form.Input(form.FromStudent(record()))
	if in.Name == nil || in.Email == nil || in.GraduationYear == nil || in.PhoneNumber == nil ||
		in.GPA == nil || in.City == nil || in.State == nil || in.Latitude == nil || in.Longitude == nil {
		t.Fatalf("create body must carry every field: %+v", in)
	}
	if in.Student().Name != "Alice" || *in.Latitude != 30.27 {
		t.Fatalf("unexpected input: %+v", in.Student())
	}
}
