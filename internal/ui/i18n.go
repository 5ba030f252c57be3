package ui

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-directory/internal/config"
	"github.com/tartampluch/go-directory/internal/engine"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// SetupI18n initializes the translation bundle and detects available languages.
func (app *DirectoryApp) SetupI18n() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return
	}

	var detectedLangs []string

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		detectedLangs = append(detectedLangs, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	app.SupportedLanguages = detectedLangs
	app.I18nBundle = bundle
	app.UpdateLocalizer()
}

// UpdateLocalizer refreshes the translator and the name collation from the language preference.
func (app *DirectoryApp) UpdateLocalizer() {
	lang := app.language()
	app.Localizer = i18n.NewLocalizer(app.I18nBundle, lang)
	app.feedLocalizer.Store(app.Localizer)
	app.Browser.SetPresentation(engine.NewFilterEngine(languageTag(lang)), app.buildRenderer())
}

func (app *DirectoryApp) language() string {
	if lang := app.Preferences.String(config.PrefLanguage); lang != "" {
		return lang
	}
	return config.DefaultLanguage
}

// languageTag resolves a preference value, falling back to the default collation.
func languageTag(lang string) language.Tag {
	tag, err := language.Parse(lang)
	if err != nil {
		return language.Make(config.DefaultCollation)
	}
	return tag
}

// GetMsg is a helper to translate a key safely.
func (app *DirectoryApp) GetMsg(key string) string {
	msg, err := app.localize(key, nil, nil)
	if err != nil {
		return key
	}
	return msg
}

// localize translates a key with template data. pluralCount may be nil.
func (app *DirectoryApp) localize(key string, data map[string]interface{}, pluralCount interface{}) (string, error) {
	return localizeWith(app.Localizer, key, data, pluralCount)
}

func localizeWith(l *i18n.Localizer, key string, data map[string]interface{}, pluralCount interface{}) (string, error) {
	if l == nil {
		return "", fmt.Errorf(config.ErrLocNotInit)
	}
	msg, err := l.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
		PluralCount:  pluralCount,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return "", err
	}
	return msg, nil
}

// countMsg renders a pluralized "Count" message, or the fallback format.
func (app *DirectoryApp) countMsg(key, fallback string, count int) string {
	msg, err := app.localize(key, map[string]interface{}{"Count": count}, count)
	if err != nil || msg == "" {
		return fmt.Sprintf(fallback, count)
	}
	return msg
}

// buildRenderer returns a renderer whose labels follow the current language.
func (app *DirectoryApp) buildRenderer() engine.Renderer {
	return engine.Renderer{
		FormatBorn: func(date string) string {
			msg, err := app.localize(config.TKeyLblBorn, map[string]interface{}{"Date": date}, nil)
			if err != nil {
				return fmt.Sprintf(config.FallbackBorn, date)
			}
			return msg
		},
		FormatPassedAway: func(p engine.Person) string {
			if p.PassedAway.Date == "" {
				msg, err := app.localize(config.TKeyLblPassedNoDt, nil, nil)
				if err != nil {
					return config.FallbackPassedNoDate
				}
				return msg
			}
			msg, err := app.localize(config.TKeyLblPassedAway,
				map[string]interface{}{"Date": p.PassedAway.Date, "Name": p.FullName()}, nil)
			if err != nil {
				return fmt.Sprintf(config.FallbackPassedAway, p.PassedAway.Date, p.FullName())
			}
			return msg
		},
	}
}

// buildSummaryFormatter returns a closure that localizes calendar event summaries.
// It runs on feed server goroutines, so it reads the language through feedLocalizer.
func (app *DirectoryApp) buildSummaryFormatter() func(p engine.Person, age int, yearKnown bool) string {
	return func(p engine.Person, age int, yearKnown bool) string {
		name := p.FullName()
		data := map[string]interface{}{"Name": name, "Age": age}

		var key, fallback string
		switch {
		case p.PassedAway.Truthy():
			key, fallback = config.TKeyEvtMemorial, fmt.Sprintf(config.FallbackSummaryMemory, name)
		case yearKnown && age > 0:
			key, fallback = config.TKeyEvtSummaryAge, fmt.Sprintf(config.FallbackSummaryAge, name, age)
		default:
			key, fallback = config.TKeyEvtSummary, fmt.Sprintf(config.FallbackSummary, name)
		}

		msg, err := localizeWith(app.feedLocalizer.Load(), key, data, nil)
		if err != nil || msg == "" {
			return fallback
		}
		return msg
	}
}
