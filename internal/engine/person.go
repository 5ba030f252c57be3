package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tartampluch/go-directory/internal/config"
	"gopkg.in/yaml.v3"
)

// decimalPattern is the only number syntax accepted: no hex, exponents, inf or NaN.
var decimalPattern = regexp.MustCompile(`^[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)$`)

// Person is one directory record. Records are supplied by a data source and never
// modified after decoding.
type Person struct {
	FirstName  string     `json:"firstName" yaml:"firstName"`
	LastName   string     `json:"lastName" yaml:"lastName"`
	BirthMonth string     `json:"birthMonth,omitempty" yaml:"birthMonth,omitempty"`
	BirthDay   Numeric    `json:"birthDay,omitempty" yaml:"birthDay,omitempty"`
	BirthYear  Numeric    `json:"birthYear,omitempty" yaml:"birthYear,omitempty"`
	Family     string     `json:"family,omitempty" yaml:"family,omitempty"`
	PassedAway PassedAway `json:"passedAway,omitzero" yaml:"passedAway,omitempty"`
	Comment    string     `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// FullName returns "First Last".
func (p Person) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Numeric is an integer-like value (birth day or year) kept as written in the source,
// whether the source used a number or a string. The empty value means absent.
type Numeric string

// Int parses the value. ok is false when the value is absent or not a number.
func (n Numeric) Int() (int, bool) {
	f, ok := n.number()
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// LooselyEquals compares the value with a query numerically, so "5", "05" and 5 are equal.
// Anything that does not parse as a number on either side never matches.
func (n Numeric) LooselyEquals(query string) bool {
	a, ok := n.number()
	if !ok {
		return false
	}
	b, ok := parseDecimal(query)
	if !ok {
		return false
	}
	return a == b
}

func (n Numeric) number() (float64, bool) {
	return parseDecimal(string(n))
}

// parseDecimal reads a plain decimal number surrounded by optional white space.
func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// UnmarshalJSON accepts a number, a string or null.
func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Numeric(s)
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return err
		}
		*n = Numeric(num.String())
	}
	return nil
}

// MarshalJSON writes the value back as a number when it is one.
func (n Numeric) MarshalJSON() ([]byte, error) {
	if _, ok := n.number(); ok {
		return []byte(strings.TrimSpace(string(n))), nil
	}
	return json.Marshal(string(n))
}

// UnmarshalYAML accepts any scalar.
func (n *Numeric) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%s: line %d", config.ErrNumericValue, value.Line)
	}
	if value.Tag == "!!null" {
		*n = ""
		return nil
	}
	*n = Numeric(value.Value)
	return nil
}

// PassedAway marks a deceased person. Sources write either a boolean or a date string;
// a missing value, false or an empty string all mean "not passed away".
type PassedAway struct {
	Passed bool
	Date   string
}

// Truthy reports whether the record is marked as passed away.
func (p PassedAway) Truthy() bool {
	return p.Passed
}

func passedAwayFromString(s string) PassedAway {
	s = strings.TrimSpace(s)
	return PassedAway{Passed: s != "", Date: s}
}

// UnmarshalJSON accepts a boolean, a string or null.
func (p *PassedAway) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = PassedAway{}
	case bytes.Equal(data, []byte("true")):
		*p = PassedAway{Passed: true}
	case bytes.Equal(data, []byte("false")):
		*p = PassedAway{}
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = passedAwayFromString(s)
	}
	return nil
}

// MarshalJSON mirrors UnmarshalJSON.
func (p PassedAway) MarshalJSON() ([]byte, error) {
	switch {
	case !p.Passed:
		return []byte("false"), nil
	case p.Date == "":
		return []byte("true"), nil
	default:
		return json.Marshal(p.Date)
	}
}

// IsZero lets omitzero/omitempty drop unset values.
func (p PassedAway) IsZero() bool {
	return !p.Passed
}

// UnmarshalYAML accepts a boolean, a string (dates included) or null.
func (p *PassedAway) UnmarshalYAML(value *yaml.Node) error {
	switch value.Tag {
	case "!!null":
		*p = PassedAway{}
	case "!!bool":
		var b bool
		if err := value.Decode(&b); err != nil {
			return err
		}
		*p = PassedAway{Passed: b}
	default:
		// value.Value keeps the literal text, so a YAML timestamp stays "2020-01-01".
		*p = passedAwayFromString(value.Value)
	}
	return nil
}
