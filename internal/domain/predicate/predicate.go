// Package predicate builds the parametrized catalog filter from a
// structured attribute set. SQL text is assembled only from fixed
// fragments with named placeholders; user values travel exclusively as
// bound parameters.
package predicate

import (
	"fmt"
	"strings"

	"github.com/aromatch/scentia/internal/domain/query"
)

// Kind tags the clause variants so generation is testable without a database.
type Kind int

const (
	KindAccords Kind = iota
	KindGender
	KindSeason
	KindTime
	KindLongevity
	KindSillage
)

// undefinedSentinel is a literal some model replies use instead of
// omitting a field; it must never reach the catalog filter.
const undefinedSentinel = "undefined"

// Param is a single named bind value.
type Param struct {
	Name  string
	Value string
}

// Clause is one AND-ed condition of the generated filter, possibly an
// OR-group over several values of the same field. The fragment contains
// only column names, operators, and :name placeholders.
type Clause struct {
	kind     Kind
	fragment string
	params   []Param
}

// Kind returns the clause variant tag.
func (c Clause) Kind() Kind { return c.kind }

// Fragment returns the SQL condition text with named placeholders.
func (c Clause) Fragment() string { return c.fragment }

// Params returns the bind values for this clause, one per placeholder.
func (c Clause) Params() []Param { return c.params }

// Predicate is an ordered sequence of independent clauses. Parameter
// names are unique across the whole predicate.
type Predicate struct {
	clauses []Clause
}

// Clauses returns the clauses in their fixed derivation order.
func (p Predicate) Clauses() []Clause { return p.clauses }

// IsEmpty reports whether the predicate matches all products.
func (p Predicate) IsEmpty() bool { return len(p.clauses) == 0 }

// Params returns all bind values across clauses, in clause order.
func (p Predicate) Params() []Param {
	var out []Param
	for _, c := range p.clauses {
		out = append(out, c.params...)
	}
	return out
}

// Build derives the filter predicate from the attribute set. Pure and
// total: absent or sentinel-valued fields are skipped, never errors.
// Clause order is fixed (accords, gender, season, time, longevity,
// sillage) so generated filters are deterministic.
func Build(attrs query.Attributes) Predicate {
	var clauses []Clause

	if c, ok := orGroup(KindAccords, "main_accords LIKE :%s", "accord", attrs.MainAccords); ok {
		clauses = append(clauses, c)
	}
	if attrs.Gender != nil && usable(*attrs.Gender) {
		clauses = append(clauses, Clause{
			kind:     KindGender,
			fragment: "LOWER(gender) = :gender",
			params:   []Param{{Name: "gender", Value: strings.ToLower(*attrs.Gender)}},
		})
	}
	if c, ok := orGroup(KindSeason, "LOWER(suitable_season) LIKE :%s", "season", attrs.Seasons); ok {
		clauses = append(clauses, c)
	}
	if c, ok := orGroup(KindTime, "LOWER(suitable_time) LIKE :%s", "time", attrs.Times); ok {
		clauses = append(clauses, c)
	}
	if attrs.Longevity != nil && usable(*attrs.Longevity) {
		clauses = append(clauses, Clause{
			kind:     KindLongevity,
			fragment: "LOWER(longevity) LIKE :longevity",
			params:   []Param{{Name: "longevity", Value: likePattern(*attrs.Longevity)}},
		})
	}
	if attrs.Sillage != nil && usable(*attrs.Sillage) {
		clauses = append(clauses, Clause{
			kind:     KindSillage,
			fragment: "LOWER(sillage) LIKE :sillage",
			params:   []Param{{Name: "sillage", Value: likePattern(*attrs.Sillage)}},
		})
	}

	return Predicate{clauses: clauses}
}

// orGroup emits one clause OR-ing a substring match per list entry, each
// bound to a distinct zero-indexed parameter ("season_0", "season_1", ...).
func orGroup(kind Kind, condFormat, prefix string, values []string) (Clause, bool) {
	if len(values) == 0 {
		return Clause{}, false
	}

	conds := make([]string, 0, len(values))
	params := make([]Param, 0, len(values))
	for i, v := range values {
		name := fmt.Sprintf("%s_%d", prefix, i)
		conds = append(conds, fmt.Sprintf(condFormat, name))
		params = append(params, Param{Name: name, Value: likePattern(v)})
	}

	fragment := conds[0]
	if len(conds) > 1 {
		fragment = "(" + strings.Join(conds, " OR ") + ")"
	}
	return Clause{kind: kind, fragment: fragment, params: params}, true
}

func usable(v string) bool {
	return v != "" && strings.ToLower(v) != undefinedSentinel
}

func likePattern(v string) string {
	return "%" + strings.ToLower(v) + "%"
}
