// Package query turns a types.Filter into one parameterized SELECT over the
// students table.
//
// The builder assumes its inputs are already typed: parsing query strings
// (and dropping malformed numbers) happens at the HTTP boundary. Nil or
// empty filters add no predicate, every predicate is ANDed, and the result
// is always ordered by the sort column and then by id so two runs over the
// same rows return them in the same order.
package query

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Table is the name of the students table.
const Table = "students"

// Columns in the order every read scans them.
var Columns = []string{
	"id",
	"name",
	"email",
	"graduation_year",
	"phone_number",
	"gpa",
	"city",
	"state",
	"latitude",
	"longitude",
	"created_at",
	"updated_at",
}

// sortColumns maps an accepted sortBy value to its column.
var sortColumns = map[string]string{
	"name":            "name",
	"gpa":             "gpa",
	"graduationYear":  "graduation_year",
	"graduation_year": "graduation_year",
	"city":            "city",
	"state":           "state",
}

// SortColumn returns the column for sortBy, falling back to name for any
// value it does not know. An unknown value is not an error.
func SortColumn(sortBy string) string {
	if col, ok := sortColumns[sortBy]; ok {
		return col
	}
	return "name"
}

// SortDirection returns DESC only for exactly "desc".
func SortDirection(sortOrder string) string {
	if sortOrder == "desc" {
		return "DESC"
	}
	return "ASC"
}

// Dialect selects the SQL flavour: placeholder style, how text is
// case-folded, and how text columns sort.
type Dialect int

const (
	// SQLite expects the ulower function registered by sqlstore. Its
	// built-in LOWER only folds ASCII.
	SQLite Dialect = iota
	Postgres
)

// DialectFor returns the dialect of a database/sql driver name.
func DialectFor(driver string) Dialect {
	if driver == "postgres" {
		return Postgres
	}
	return SQLite
}

func (d Dialect) placeholder() sq.PlaceholderFormat {
	if d == Postgres {
		return sq.Dollar
	}
	return sq.Question
}

// fold lower-cases a column the way strings.ToLower lower-cases the
// argument it is compared with.
func (d Dialect) fold(column string) string {
	if d == Postgres {
		return "LOWER(" + column + ")"
	}
	return "ulower(" + column + ")"
}

// textKey is the sort key of a text column: folded, then compared by code
// point on both dialects.
func (d Dialect) textKey(column string) string {
	if d == Postgres {
		return d.fold(column) + ` COLLATE "C"`
	}
	return d.fold(column)
}

// Builder builds statements for one dialect.
type Builder struct {
	d  Dialect
	sb sq.StatementBuilderType
}

// New returns a Builder for d.
func New(d Dialect) Builder {
	return Builder{d: d, sb: sq.StatementBuilder.PlaceholderFormat(d.placeholder())}
}

// Select returns the statement reading every student that matches f.
func (b Builder) Select(f types.Filter) sq.SelectBuilder {
	q := b.sb.Select(Columns...).From(Table)

	if s, ok := text(f.Search); ok {
		q = q.Where(sq.Or{
			b.contains("name", s),
			b.contains("city", s),
			b.contains("state", s),
		})
	}
	if f.MinGPA != nil {
		q = q.Where(sq.GtOrEq{"gpa": *f.MinGPA})
	}
	if f.MaxGPA != nil {
		q = q.Where(sq.LtOrEq{"gpa": *f.MaxGPA})
	}
	if f.GraduationYear != nil {
		q = q.Where(sq.Eq{"graduation_year": *f.GraduationYear})
	}
	if c, ok := text(f.City); ok {
		q = q.Where(b.contains("city", c))
	}
	if s, ok := text(f.State); ok {
		q = q.Where(b.contains("state", s))
	}

	return q.OrderBy(b.sortKey(SortColumn(f.SortBy))+" "+SortDirection(f.SortOrder), "id ASC")
}

// sortKey orders text columns case-insensitively by code point so both
// dialects return the same order; numeric columns sort as they are.
func (b Builder) sortKey(column string) string {
	switch column {
	case "name", "city", "state":
		return b.d.textKey(column)
	default:
		return column
	}
}

// ByID returns the statement reading a single student.
func (b Builder) ByID(id int64) sq.SelectBuilder {
	return b.sb.Select(Columns...).From(Table).Where(sq.Eq{"id": id}).Limit(1)
}

// Exists returns the statement selecting 1 when id exists.
func (b Builder) Exists(id int64) sq.SelectBuilder {
	return b.sb.Select("1").From(Table).Where(sq.Eq{"id": id}).Limit(1)
}

// Insert returns an INSERT for values, keyed by column, that yields the new
// id. Both sqlite3 (3.35+) and postgres support RETURNING.
func (b Builder) Insert(values map[string]any) sq.InsertBuilder {
	return b.sb.Insert(Table).SetMap(values).Suffix("RETURNING id")
}

// Update returns an UPDATE of id setting values, keyed by column.
func (b Builder) Update(id int64, values map[string]any) sq.UpdateBuilder {
	return b.sb.Update(Table).SetMap(values).Where(sq.Eq{"id": id})
}

// text reports the filter value and whether it constrains anything.
func text(p *string) (string, bool) {
	if p == nil || *p == "" {
		return "", false
	}
	return *p, true
}

// contains is a case-insensitive substring match. The value is lower-cased
// with strings.ToLower and the column with the dialect's Unicode-aware
// equivalent, so non-ASCII letters fold the same way on both sides.
func (b Builder) contains(column, value string) sq.Sqlizer {
	return sq.Expr(b.d.fold(column)+` LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(value))+"%")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user text match literally.
func escapeLike(s string) string { return likeEscaper.Replace(s) }
