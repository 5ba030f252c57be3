package engine

import "time"

// Months lists the twelve recognized month names in calendar order.
var Months = []time.Month{
	time.January, time.February, time.March, time.April,
	time.May, time.June, time.July, time.August,
	time.September, time.October, time.November, time.December,
}

// ParseMonth resolves an English month name, ignoring case and surrounding space.
func ParseMonth(name string) (time.Month, bool) {
	folded := fold(name)
	if folded == "" {
		return 0, false
	}
	for _, m := range Months {
		if fold(m.String()) == folded {
			return m, true
		}
	}
	return 0, false
}

// MonthCounts annotates month selectors: how many records fall in each month, and how
// many carry any recognized month at all.
type MonthCounts struct {
	ByMonth [12]int
	Total   int
}

// Count returns the number of records born in m.
func (mc MonthCounts) Count(m time.Month) int {
	if m < time.January || m > time.December {
		return 0
	}
	return mc.ByMonth[m-1]
}

// CountMonths aggregates records by birth month. Absent and unrecognized months are
// left out of every count.
func CountMonths(records []Person) MonthCounts {
	var mc MonthCounts
	for _, p := range records {
		m, ok := ParseMonth(p.BirthMonth)
		if !ok {
			continue
		}
		mc.ByMonth[m-1]++
		mc.Total++
	}
	return mc
}
