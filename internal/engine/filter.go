package engine

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/tartampluch/go-directory/internal/config"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FilterEngine matches and orders directory records. It holds no state besides the
// collation locale, so one engine can serve any number of criteria snapshots.
type FilterEngine struct {
	locale language.Tag
}

// NewFilterEngine returns an engine ordering names with the rules of the given locale.
func NewFilterEngine(locale language.Tag) *FilterEngine {
	return &FilterEngine{locale: locale}
}

// Apply returns the records matching every active criterion, ordered by last name then
// first name. The input slice is left untouched.
func (e *FilterEngine) Apply(records []Person, c Criteria) []Person {
	matched := make([]Person, 0, len(records))
	for _, p := range records {
		if Matches(p, c) {
			matched = append(matched, p)
		}
	}
	e.Sort(matched)

	slog.Debug(config.MsgFilterApplied,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyCriteria,
			slog.String(config.LogKeyFirst, c.FirstNamePrefix),
			slog.String(config.LogKeyLast, c.LastNamePrefix),
			slog.String(config.LogKeyMonth, c.BirthMonth),
			slog.String(config.LogKeyDay, c.BirthDay),
			slog.String(config.LogKeyYear, c.BirthYear),
			slog.String(config.LogKeyFamily, c.Family),
			slog.Bool(config.LogKeyPassed, c.PassedAwayOnly),
		),
		config.LogKeyRecords, len(records),
		config.LogKeyMatched, len(matched),
	)
	return matched
}

// Sort orders people in place by last name, then first name, ignoring case. Records
// whose names collate equal keep their relative order.
func (e *FilterEngine) Sort(people []Person) {
	// A Collator keeps internal buffers and must not be shared between goroutines.
	col := collate.New(e.locale, collate.IgnoreCase)
	slices.SortStableFunc(people, func(a, b Person) int {
		if c := col.CompareString(a.LastName, b.LastName); c != 0 {
			return c
		}
		return col.CompareString(a.FirstName, b.FirstName)
	})
}

// Families lists the distinct family tags of records, ignoring case, in collation order.
// The first spelling met for a tag is the one kept.
func (e *FilterEngine) Families(records []Person) []string {
	seen := make(map[string]bool)
	var families []string
	for _, p := range records {
		key := fold(p.Family)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		families = append(families, strings.TrimSpace(p.Family))
	}
	col := collate.New(e.locale, collate.IgnoreCase)
	col.SortStrings(families)
	return families
}

// Matches reports whether p satisfies every active criterion of c. Empty criteria
// match everything.
func Matches(p Person, c Criteria) bool {
	if prefix := fold(c.FirstNamePrefix); prefix != "" && !strings.HasPrefix(fold(p.FirstName), prefix) {
		return false
	}
	if prefix := fold(c.LastNamePrefix); prefix != "" && !strings.HasPrefix(fold(p.LastName), prefix) {
		return false
	}
	if !matchesMonth(p.BirthMonth, c) {
		return false
	}
	if strings.TrimSpace(c.BirthDay) != "" && !p.BirthDay.LooselyEquals(c.BirthDay) {
		return false
	}
	if strings.TrimSpace(c.BirthYear) != "" && !p.BirthYear.LooselyEquals(c.BirthYear) {
		return false
	}
	if family := fold(c.Family); family != "" && fold(p.Family) != family {
		return false
	}
	if c.PassedAwayOnly && !p.PassedAway.Truthy() {
		return false
	}
	return true
}

func matchesMonth(recordMonth string, c Criteria) bool {
	want := fold(c.BirthMonth)
	switch {
	case want == "":
		return true
	case c.AllMonths():
		_, ok := ParseMonth(recordMonth)
		return ok
	default:
		got := fold(recordMonth)
		return got != "" && got == want
	}
}

// fold normalizes text for case-insensitive comparison.
func fold(s string) string {
	// Casers are stateful; a fresh one per call keeps fold safe for concurrent use.
	return cases.Fold().String(strings.TrimSpace(s))
}
