package engine

import (
	"fmt"
	"strings"

	"github.com/tartampluch/go-directory/internal/config"
)

// DisplayUnit is one rendered record. Empty fields are not shown.
type DisplayUnit struct {
	Name       string
	Born       string
	PassedAway string
	Comment    string
}

// View is what the result area shows for one criteria snapshot.
type View struct {
	Units []DisplayUnit
	Count int

	// Active is true when at least one filter produced this view.
	Active bool

	// NoMatches asks for the "no results" indicator: filters are set but nothing matched.
	NoMatches bool
}

// Renderer turns ordered records into display units.
// The Format hooks let the UI inject localized strings; nil hooks use English fallbacks.
type Renderer struct {
	FormatBorn       func(date string) string
	FormatPassedAway func(p Person) string
}

// Render builds the view for results produced under criteria that were active or not.
func (r Renderer) Render(results []Person, active bool) View {
	units := make([]DisplayUnit, 0, len(results))
	for _, p := range results {
		units = append(units, r.Unit(p))
	}
	return View{
		Units:     units,
		Count:     len(units),
		Active:    active,
		NoMatches: active && len(units) == 0,
	}
}

// Unit renders a single record.
func (r Renderer) Unit(p Person) DisplayUnit {
	u := DisplayUnit{
		Name:    p.FullName(),
		Comment: strings.TrimSpace(p.Comment),
	}

	if date := BirthDate(p); date != "" {
		if r.FormatBorn != nil {
			u.Born = r.FormatBorn(date)
		} else {
			u.Born = fmt.Sprintf(config.FallbackBorn, date)
		}
	}

	if p.PassedAway.Truthy() {
		switch {
		case r.FormatPassedAway != nil:
			u.PassedAway = r.FormatPassedAway(p)
		case p.PassedAway.Date != "":
			u.PassedAway = fmt.Sprintf(config.FallbackPassedAway, p.PassedAway.Date, p.FullName())
		default:
			u.PassedAway = config.FallbackPassedNoDate
		}
	}
	return u
}

// BirthDate composes "Month Day, Year" from whichever pieces the record has.
// Missing pieces are skipped along with their separators.
func BirthDate(p Person) string {
	month := strings.TrimSpace(p.BirthMonth)
	day := strings.TrimSpace(string(p.BirthDay))
	year := strings.TrimSpace(string(p.BirthYear))

	head := strings.TrimSpace(month + " " + day)
	switch {
	case head == "":
		return year
	case year == "":
		return head
	case day == "":
		return head + " " + year
	default:
		return head + ", " + year
	}
}
