package engine

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/tartampluch/go-directory/internal/config"
)

// Field names a text criterion, as edited by a single UI input.
type Field int

const (
	FieldFirstName Field = iota
	FieldLastName
	FieldBirthMonth
	FieldBirthDay
	FieldBirthYear
	FieldFamily
)

// Criteria is an immutable snapshot of the user's filters. Empty strings and a false
// PassedAwayOnly mean "not filtering on this field". Editing produces a new value.
type Criteria struct {
	FirstNamePrefix string
	LastNamePrefix  string
	BirthMonth      string // month name or config.AllMonths
	BirthDay        string
	BirthYear       string
	Family          string
	PassedAwayOnly  bool
}

// Set returns a copy of c with one text field replaced.
func (c Criteria) Set(f Field, value string) Criteria {
	switch f {
	case FieldFirstName:
		c.FirstNamePrefix = value
	case FieldLastName:
		c.LastNamePrefix = value
	case FieldBirthMonth:
		c.BirthMonth = value
	case FieldBirthDay:
		c.BirthDay = value
	case FieldBirthYear:
		c.BirthYear = value
	case FieldFamily:
		c.Family = value
	}
	return c
}

// WithPassedAwayOnly returns a copy of c with the passed-away restriction toggled.
func (c Criteria) WithPassedAwayOnly(only bool) Criteria {
	c.PassedAwayOnly = only
	return c
}

// Active reports whether at least one filter is set.
func (c Criteria) Active() bool {
	for _, v := range c.texts() {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return c.PassedAwayOnly
}

// AllMonths reports whether the month criterion is the "all months" sentinel.
func (c Criteria) AllMonths() bool {
	return fold(c.BirthMonth) == fold(config.AllMonths)
}

func (c Criteria) texts() []string {
	return []string{c.FirstNamePrefix, c.LastNamePrefix, c.BirthMonth, c.BirthDay, c.BirthYear, c.Family}
}

// CriteriaFromValues reads criteria from URL query parameters. An unparsable "passed"
// flag counts as false.
func CriteriaFromValues(v url.Values) Criteria {
	passed, _ := strconv.ParseBool(v.Get(config.QueryPassed))
	return Criteria{
		FirstNamePrefix: v.Get(config.QueryFirst),
		LastNamePrefix:  v.Get(config.QueryLast),
		BirthMonth:      v.Get(config.QueryMonth),
		BirthDay:        v.Get(config.QueryDay),
		BirthYear:       v.Get(config.QueryYear),
		Family:          v.Get(config.QueryFamily),
		PassedAwayOnly:  passed,
	}
}
