package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/youta-t/flarc"

	"github.com/aanand-mishra/student-records/internal/client"
	"github.com/aanand-mishra/student-records/internal/form"
	"github.com/aanand-mishra/student-records/internal/types"
)

// api is the part of *client.Client the commands use.
type api interface {
	List(ctx context.Context, f types.Filter) ([]types.Student, error)
	Get(ctx context.Context, id int64) (types.Student, error)
	Create(ctx context.Context, in types.StudentInput) (int64, error)
	Update(ctx context.Context, id int64, p types.StudentPatch) error
}

const ARG_ID = "ID"

var errValidation = errors.New("form has invalid fields")

// ─────────────────────────────────────────────────────────────────────────────
// list
// ─────────────────────────────────────────────────────────────────────────────

type ListFlag struct {
	Search    string `flag:"search" help:"Case-insensitive substring of name, city or state."`
	MinGPA    string `flag:"min-gpa" help:"Lowest GPA to include."`
	MaxGPA    string `flag:"max-gpa" help:"Highest GPA to include."`
	Year      string `flag:"year" help:"Graduation year to match exactly."`
	City      string `flag:"city" help:"Case-insensitive substring of the city."`
	State     string `flag:"state" help:"Case-insensitive substring of the state."`
	SortBy    string `flag:"sort-by" metavar:"name|gpa|graduationYear|city|state" help:"Sort key."`
	SortOrder string `flag:"sort-order" metavar:"asc|desc" help:"Sort direction."`
}

func newList(c api) (flarc.Command, error) {
	return flarc.NewCommand(
		"Search student records.",
		ListFlag{SortBy: "name", SortOrder: "asc"},
		flarc.Args{},
		func(ctx context.Context, cl flarc.Commandline[ListFlag], _ []any) error {
			f, err := cl.Flags().filter()
			if err != nil {
				return err
			}
			students, err := c.List(ctx, f)
			if err != nil {
				return report(cl.Stderr(), err)
			}
			return dump(cl.Stdout(), students)
		},
	)
}

func (lf ListFlag) filter() (types.Filter, error) {
	f := types.Filter{SortBy: lf.SortBy, SortOrder: lf.SortOrder}
	if lf.Search != "" {
		f.Search = &lf.Search
	}
	if lf.City != "" {
		f.City = &lf.City
	}
	if lf.State != "" {
		f.State = &lf.State
	}

	var err error
	if f.MinGPA, err = optFloat("min-gpa", lf.MinGPA); err != nil {
		return types.Filter{}, err
	}
	if f.MaxGPA, err = optFloat("max-gpa", lf.MaxGPA); err != nil {
		return types.Filter{}, err
	}
	if lf.Year != "" {
		y, err := strconv.Atoi(lf.Year)
		if err != nil {
			return types.Filter{}, fmt.Errorf("%w: --year must be an integer", flarc.ErrUsage)
		}
		f.GraduationYear = &y
	}
	return f, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// get
// ─────────────────────────────────────────────────────────────────────────────

func newGet(c api) (flarc.Command, error) {
	return flarc.NewCommand(
		"Show one student record.",
		struct{}{},
		flarc.Args{
			{Name: ARG_ID, Required: true, Help: "id of the student."},
		},
		func(ctx context.Context, cl flarc.Commandline[struct{}], _ []any) error {
			id, err := argID(cl.Args())
			if err != nil {
				return err
			}
			s, err := c.Get(ctx, id)
			if err != nil {
				return report(cl.Stderr(), err)
			}
			return dump(cl.Stdout(), s)
		},
	)
}

// ─────────────────────────────────────────────────────────────────────────────
// create / edit
// ─────────────────────────────────────────────────────────────────────────────

// RecordFlag holds the form fields. Numbers are taken as strings so an
// unset flag can be told apart from zero.
type RecordFlag struct {
	Name      string `flag:"name" help:"Student name."`
	Email     string `flag:"email" help:"Email address."`
	Year      string `flag:"year" help:"Graduation year (1900-2100)."`
	Phone     string `flag:"phone" metavar:"123-456-7890" help:"Phone number."`
	GPA       string `flag:"gpa" help:"GPA (0.0-4.0)."`
	City      string `flag:"city" help:"City."`
	State     string `flag:"state" help:"State."`
	Latitude  string `flag:"lat" help:"Latitude (-90-90)."`
	Longitude string `flag:"lon" help:"Longitude (-180-180)."`
}

// apply writes every set flag onto v.
func (rf RecordFlag) apply(v *form.Values) error {
	set := func(dst *string, s string) {
		if s != "" {
			*dst = s
		}
	}
	set(&v.Name, rf.Name)
	set(&v.Email, rf.Email)
	set(&v.PhoneNumber, rf.Phone)
	set(&v.City, rf.City)
	set(&v.State, rf.State)

	if rf.Year != "" {
		y, err := strconv.Atoi(rf.Year)
		if err != nil {
			return fmt.Errorf("%w: --year must be an integer", flarc.ErrUsage)
		}
		v.GraduationYear = y
	}
	for _, n := range []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"gpa", rf.GPA, &v.GPA},
		{"lat", rf.Latitude, &v.Latitude},
		{"lon", rf.Longitude, &v.Longitude},
	} {
		f, err := optFloat(n.name, n.raw)
		if err != nil {
			return err
		}
		if f != nil {
			*n.dst = *f
		}
	}
	return nil
}

func newCreate(c api) (flarc.Command, error) {
	return flarc.NewCommand(
		"Add a student record.",
		RecordFlag{},
		flarc.Args{},
		func(ctx context.Context, cl flarc.Commandline[RecordFlag], _ []any) error {
			v := form.Default()
			if err := cl.Flags().apply(&v); err != nil {
				return err
			}
			if errs := form.Validate(v); len(errs) > 0 {
				return validationFailed(cl.Stderr(), errs)
			}

			id, err := c.Create(ctx, form.Input(v))
			if err != nil {
				return report(cl.Stderr(), err)
			}
			fmt.Fprintf(cl.Stdout(), "Student created successfully. (id: %d)\n", id)
			return nil
		},
		flarc.WithDescription(`
Add a student record. Every field is validated before anything is sent.
Fields left out keep the empty form's defaults (graduation year 2025, GPA 0,
coordinates 0).
`),
	)
}

func newEdit(c api) (flarc.Command, error) {
	return flarc.NewCommand(
		"Change fields of a student record.",
		RecordFlag{},
		flarc.Args{
			{Name: ARG_ID, Required: true, Help: "id of the student."},
		},
		func(ctx context.Context, cl flarc.Commandline[RecordFlag], _ []any) error {
			id, err := argID(cl.Args())
			if err != nil {
				return err
			}

			current, err := c.Get(ctx, id)
			if err != nil {
				return report(cl.Stderr(), err)
			}

			v := form.FromStudent(current)
			if err := cl.Flags().apply(&v); err != nil {
				return err
			}
			if errs := form.Validate(v); len(errs) > 0 {
				return validationFailed(cl.Stderr(), errs)
			}

			patch := form.Diff(current, v)
			if patch.IsEmpty() {
				fmt.Fprintln(cl.Stdout(), "No changes.")
				return nil
			}

			if err := c.Update(ctx, id, patch); err != nil {
				return report(cl.Stderr(), err)
			}
			fmt.Fprintln(cl.Stdout(), "Student updated successfully.")
			return nil
		},
		flarc.WithDescription(`
Change fields of a student record. The record is loaded, the given flags are
applied, the whole record is validated, and only the fields that differ from
the stored values are sent.
`),
	)
}

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

func argID(args map[string][]string) (int64, error) {
	id, err := strconv.ParseInt(args[ARG_ID][0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", flarc.ErrUsage, ARG_ID)
	}
	return id, nil
}

func optFloat(name, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: --%s must be a number", flarc.ErrUsage, name)
	}
	return &f, nil
}

func dump(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

func printFields(w io.Writer, errs map[string]string) {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, errs[k])
	}
}

// validationFailed lists the invalid fields with the form's prompt; nothing
// is sent to the server.
func validationFailed(w io.Writer, errs map[string]string) error {
	printFields(w, errs)
	fmt.Fprintln(w, "Please fix the validation errors.")
	return errValidation
}

// report prints field messages carried by a server error and returns err
// for the status line.
func report(w io.Writer, err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		printFields(w, apiErr.Fields)
	}
	return err
}
