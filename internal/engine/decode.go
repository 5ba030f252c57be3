package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/hjson/hjson-go/v4"
	"github.com/tartampluch/go-directory/internal/config"
	"gopkg.in/yaml.v3"
)

// DetectFormat picks a dataset format from the file name, falling back to the first
// bytes of the content when the extension says nothing.
func DetectFormat(name string, head []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case config.ExtJSON:
		return config.FormatJSON, nil
	case config.ExtYAML, config.ExtYML:
		return config.FormatYAML, nil
	case config.ExtHJSON, config.ExtJS:
		return config.FormatHJSON, nil
	case config.ExtVCF, config.ExtVCard:
		return config.FormatVCard, nil
	}

	trimmed := strings.TrimSpace(string(head))
	switch {
	case strings.HasPrefix(strings.ToUpper(trimmed), config.SniffVCard):
		return config.FormatVCard, nil
	case strings.HasPrefix(trimmed, config.SniffJSONArray):
		// Strict JSON is valid HJSON, so the relaxed decoder covers both.
		return config.FormatHJSON, nil
	case strings.HasPrefix(trimmed, config.SniffYAMLList):
		return config.FormatYAML, nil
	}
	return "", fmt.Errorf("%s: %q", config.ErrFormatUnknown, name)
}

// Decode reads a whole dataset in the given format.
func Decode(format string, r io.Reader) ([]Person, error) {
	switch format {
	case config.FormatJSON:
		return DecodeJSON(r)
	case config.FormatYAML:
		return DecodeYAML(r)
	case config.FormatHJSON:
		return DecodeHJSON(r)
	case config.FormatVCard:
		return DecodeVCard(r)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrFormatUnknown, format)
	}
}

// DecodeJSON reads a JSON array of records.
func DecodeJSON(r io.Reader) ([]Person, error) {
	var people []Person
	if err := json.NewDecoder(r).Decode(&people); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDatasetDecode, err)
	}
	return validated(people)
}

// DecodeYAML reads a YAML sequence of records. An empty document is an empty dataset.
func DecodeYAML(r io.Reader) ([]Person, error) {
	var people []Person
	if err := yaml.NewDecoder(r).Decode(&people); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", config.ErrDatasetDecode, err)
	}
	return validated(people)
}

// DecodeHJSON reads relaxed JSON: comments, unquoted keys and trailing commas are allowed.
// A JavaScript data module ("export const people = [ ... ];") is accepted too; everything
// outside the outermost brackets is ignored.
func DecodeHJSON(r io.Reader) ([]Person, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDatasetRead, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []Person{}, nil
	}
	if data[0] != '[' {
		start, end := bytes.IndexByte(data, '['), bytes.LastIndexByte(data, ']')
		if start < 0 || end < start {
			return nil, fmt.Errorf("%s: no record array found", config.ErrDatasetDecode)
		}
		data = data[start : end+1]
	}

	// hjson produces generic values; a JSON round trip reuses the record decoding rules.
	var raw interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDatasetDecode, err)
	}
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDatasetDecode, err)
	}
	return DecodeJSON(bytes.NewReader(normalized))
}

// DecodeVCard reads a vCard stream. Cards without a usable name are skipped with a
// warning rather than failing the whole address book.
func DecodeVCard(r io.Reader) ([]Person, error) {
	decoder := vcard.NewDecoder(r)
	people := []Person{}

	for {
		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Log error but continue to next card to maximize data recovery
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompLoader,
				config.LogKeyError, err)
			continue
		}

		p, ok := personFromCard(card)
		if !ok {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompLoader,
				config.LogKeyError, config.ErrMissingName)
			continue
		}
		people = append(people, p)
	}
	return people, nil
}

func personFromCard(card vcard.Card) (Person, bool) {
	var p Person

	// Name Strategy: N (Structured) > FN (Formatted, split on the first space)
	if n := card.Name(); n != nil {
		p.FirstName = strings.TrimSpace(n.GivenName)
		p.LastName = strings.TrimSpace(n.FamilyName)
	}
	if p.FirstName == "" || p.LastName == "" {
		if fn := card.Get(config.VCardFN); fn != nil {
			parts := strings.Fields(fn.Value)
			if len(parts) >= 2 {
				p.FirstName = parts[0]
				p.LastName = strings.Join(parts[1:], " ")
			}
		}
	}
	if p.FirstName == "" || p.LastName == "" {
		return Person{}, false
	}

	if bday := card.Get(config.VCardBDAY); bday != nil && bday.Value != "" {
		if birthDate, yearKnown, err := parseDate(bday.Value); err == nil {
			p.BirthMonth = birthDate.Month().String()
			p.BirthDay = Numeric(strconv.Itoa(birthDate.Day()))
			if yearKnown {
				p.BirthYear = Numeric(strconv.Itoa(birthDate.Year()))
			}
		} else {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompLoader,
				config.LogKeyValue, bday.Value)
		}
	}

	if cats := card.Get(config.VCardCategories); cats != nil {
		if first, _, _ := strings.Cut(cats.Value, ","); strings.TrimSpace(first) != "" {
			p.Family = strings.TrimSpace(first)
		}
	}
	if death := card.Get(config.VCardDeathDate); death != nil {
		p.PassedAway = passedAwayFromString(death.Value)
	}
	if note := card.Get(config.VCardNote); note != nil {
		p.Comment = note.Value
	}
	return p, true
}

// parseDate handles the vCard BDAY forms: full dates and truncated --MMDD dates.
func parseDate(value string) (time.Time, bool, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	// Truncated dates keep Feb 29 by landing on a leap year.
	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}

// EncodeJSON writes records in the same shape DecodeJSON reads.
func EncodeJSON(w io.Writer, people []Person) error {
	if people == nil {
		people = []Person{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(people)
}

// validated enforces the one hard rule on records: both names are present.
func validated(people []Person) ([]Person, error) {
	if people == nil {
		people = []Person{}
	}
	for i, p := range people {
		if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
			return nil, fmt.Errorf("%s: record %d", config.ErrMissingName, i)
		}
	}
	return people, nil
}
