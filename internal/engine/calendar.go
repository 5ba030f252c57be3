package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-directory/internal/config"
)

// CalendarBuilder exports directory records as an iCalendar birthday feed.
type CalendarBuilder struct {
	Clock Clock // Interface for time mocking; nil means the real clock.

	// FormatSummary allows the UI to inject localized strings into the logic layer.
	FormatSummary func(p Person, age int, yearKnown bool) string
}

// birthday is the calendar-relevant part of a record.
type birthday struct {
	person    Person
	month     time.Month
	day       int
	year      int
	yearKnown bool
}

// Now reads the builder's clock, falling back to real time.
func (b *CalendarBuilder) Now() time.Time {
	if b == nil || b.Clock == nil {
		return RealClock{}.Now()
	}
	return b.Clock.Now()
}

// Build returns the encoded calendar and the number of events it holds. Records without
// a recognized month and a day valid for that month produce no event.
func (b *CalendarBuilder) Build(people []Person) ([]byte, int, error) {
	now := b.Now()

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986 refresh hint for subscribed clients.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, p := range people {
		bd, ok := birthdayOf(p)
		if !ok {
			slog.Debug(config.MsgSkippedRecord,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, p.FullName())
			continue
		}
		for _, e := range b.createEvents(bd, now) {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	if len(cal.Children) == 0 {
		// An empty but valid VCALENDAR keeps subscribed clients from flagging the feed.
		return []byte(config.StubVCalendar), 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Info(config.MsgCalendarBuilt,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyRecords, len(people),
		config.LogKeyEvents, len(cal.Children),
	)
	return buf.Bytes(), len(cal.Children), nil
}

func birthdayOf(p Person) (birthday, bool) {
	month, ok := ParseMonth(p.BirthMonth)
	if !ok {
		return birthday{}, false
	}
	day, ok := p.BirthDay.Int()
	if !ok || day < 1 {
		return birthday{}, false
	}
	// Validate against a leap year so Feb 29 is accepted and Feb 30 is not.
	if time.Date(config.DefaultLeapYear, month, day, 0, 0, 0, 0, time.UTC).Month() != month {
		return birthday{}, false
	}
	year, yearKnown := p.BirthYear.Int()
	return birthday{person: p, month: month, day: day, year: year, yearKnown: yearKnown}, true
}

// createEvents generates events for the previous, current and next year, never before
// a known birth year. Feb 29 falls on Mar 1 in common years.
func (b *CalendarBuilder) createEvents(bd birthday, now time.Time) []*ical.Event {
	currentYear := now.Year()
	loc := now.Location()
	name := bd.person.FullName()

	input := fmt.Sprintf(config.FormatHashInput, name, fmt.Sprintf("%02d-%02d", bd.month, bd.day), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	uidBase := fmt.Sprintf("%x", hash[:config.UIDHashLength])

	var events []*ical.Event
	for _, y := range []int{currentYear - 1, currentYear, currentYear + 1} {
		if bd.yearKnown && y < bd.year {
			continue
		}

		age := 0
		if bd.yearKnown {
			age = y - bd.year
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))
		event.Props.SetText(config.PropSummary, b.summary(bd.person, age, bd.yearKnown))
		if bd.person.Family != "" {
			event.Props.SetText(config.PropCategories, bd.person.Family)
		}

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(time.Date(y, bd.month, bd.day, 0, 0, 0, 0, loc))
		event.Props.Set(dtStartProp)

		events = append(events, event)
	}
	return events
}

func (b *CalendarBuilder) summary(p Person, age int, yearKnown bool) string {
	if b.FormatSummary != nil {
		return b.FormatSummary(p, age, yearKnown)
	}
	switch {
	case p.PassedAway.Truthy():
		return fmt.Sprintf(config.FallbackSummaryMemory, p.FullName())
	case yearKnown && age > 0:
		return fmt.Sprintf(config.FallbackSummaryAge, p.FullName(), age)
	default:
		return fmt.Sprintf(config.FallbackSummary, p.FullName())
	}
}
