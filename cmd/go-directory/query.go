package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tartampluch/go-directory/internal/config"
	"github.com/tartampluch/go-directory/internal/engine"
	"github.com/tartampluch/go-directory/internal/ui"
	"golang.org/x/text/language"
)

// queryOptions holds the flags of the headless query mode.
type queryOptions struct {
	data   string
	first  string
	last   string
	month  string
	day    string
	year   string
	family string
	passed bool
	all    bool
	ics    bool
	json   bool
}

func registerQueryFlags(fs *flag.FlagSet) *queryOptions {
	q := &queryOptions{}
	fs.StringVar(&q.data, config.FlagData, "", config.FlagDescData)
	fs.StringVar(&q.first, config.FlagFirst, "", config.FlagDescFirst)
	fs.StringVar(&q.last, config.FlagLast, "", config.FlagDescLast)
	fs.StringVar(&q.month, config.FlagMonth, "", config.FlagDescMonth)
	fs.StringVar(&q.day, config.FlagDay, "", config.FlagDescDay)
	fs.StringVar(&q.year, config.FlagYear, "", config.FlagDescYear)
	fs.StringVar(&q.family, config.FlagFamily, "", config.FlagDescFamily)
	fs.BoolVar(&q.passed, config.FlagPassed, false, config.FlagDescPassed)
	fs.BoolVar(&q.all, config.FlagAll, false, config.FlagDescAll)
	fs.BoolVar(&q.ics, config.FlagICS, false, config.FlagDescICS)
	fs.BoolVar(&q.json, config.FlagJSON, false, config.FlagDescJSON)
	return q
}

func (q *queryOptions) criteria() engine.Criteria {
	return engine.Criteria{
		FirstNamePrefix: q.first,
		LastNamePrefix:  q.last,
		BirthMonth:      q.month,
		BirthDay:        q.day,
		BirthYear:       q.year,
		Family:          q.family,
		PassedAwayOnly:  q.passed,
	}
}

// sourceConfig treats http(s) URLs as web sources and anything else as a file path.
func (q *queryOptions) sourceConfig() engine.SourceConfig {
	lower := strings.ToLower(q.data)
	if strings.HasPrefix(lower, config.SchemeHTTP+"://") || strings.HasPrefix(lower, config.SchemeHTTPS+"://") {
		return engine.SourceConfig{Mode: config.SourceModeWeb, WebURL: q.data}
	}
	return engine.SourceConfig{Mode: config.SourceModeLocal, LocalPath: q.data}
}

// runQuery loads the dataset, applies the flags the way the directory window applies
// its inputs, and prints the matches.
func runQuery(ctx context.Context, q *queryOptions, fetcher engine.DataFetcher, out io.Writer) error {
	loader := &engine.Loader{Fetcher: fetcher}
	people, err := loader.Load(ctx, q.sourceConfig())
	if err != nil {
		return err
	}

	browser := ui.NewBrowser(engine.NewFilterEngine(language.Make(config.DefaultCollation)), engine.Renderer{})
	browser.SetPeople(people)
	browser.Update(func(engine.Criteria) engine.Criteria { return q.criteria() })
	if q.all {
		browser.ShowAll()
	}
	results := browser.Results()

	slog.Info(config.MsgQueryDone,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyRecords, len(people),
		config.LogKeyMatched, len(results),
	)

	switch {
	case q.json:
		return engine.EncodeJSON(out, results)
	case q.ics:
		data, _, err := (&engine.CalendarBuilder{}).Build(results)
		if err != nil {
			return fmt.Errorf("%s: %w", config.ErrCalendarBuild, err)
		}
		_, err = out.Write(data)
		return err
	default:
		return printView(out, browser.View())
	}
}

// printView writes one block per person: the name, then each available detail indented.
func printView(out io.Writer, view engine.View) error {
	var b strings.Builder
	if view.NoMatches {
		b.WriteString(config.FallbackNoResults + "\n")
	}
	for _, u := range view.Units {
		b.WriteString(u.Name + "\n")
		for _, line := range []string{u.Born, u.PassedAway, u.Comment} {
			if line != "" {
				b.WriteString("  " + line + "\n")
			}
		}
	}
	_, err := io.WriteString(out, b.String())
	return err
}
