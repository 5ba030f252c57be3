package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-directory/internal/config"
	"github.com/tartampluch/go-directory/internal/engine"
	"github.com/tartampluch/go-directory/internal/server"
	"github.com/zalando/go-keyring"
	"golang.org/x/text/language"
)

// DirectoryApp encapsulates the UI state, preferences, and background logic.
type DirectoryApp struct {
	App         fyne.App
	Window      fyne.Window // settings window, nil when closed
	MainWindow  fyne.Window // directory window, nil when closed
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	// feedLocalizer mirrors Localizer for the feed server goroutines.
	feedLocalizer atomic.Pointer[i18n.Localizer]

	Server  *server.FeedServer
	Loader  *engine.Loader
	Browser *Browser

	Tray desktop.App
	Menu *fyne.Menu

	TrayStatusItem   *fyne.MenuItem
	TrayReloadItem   *fyne.MenuItem
	TraySettingsItem *fyne.MenuItem

	SupportedLanguages []string
	configChan         chan string

	search *searchWidgets
}

// NewDirectoryApp constructs the application and wires dependencies.
func NewDirectoryApp(a fyne.App, ctx context.Context, srv *server.FeedServer, fetcher engine.DataFetcher) *DirectoryApp {
	a.SetIcon(theme.AccountIcon())

	return &DirectoryApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Server:             srv,
		Loader:             &engine.Loader{Fetcher: fetcher},
		Browser:            NewBrowser(engine.NewFilterEngine(language.Make(config.DefaultCollation)), engine.Renderer{}),
		SupportedLanguages: config.SupportedLanguages,
		configChan:         make(chan string, config.ChannelBufferSize),
	}
}

// Run launches the application services and the main UI loop.
func (app *DirectoryApp) Run() {
	app.SetupI18n()
	app.Server.Builder.FormatSummary = app.buildSummaryFormatter()
	app.watchPreferences()

	go func() {
		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)

			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
		}
	}()

	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.Tray.SetSystemTrayIcon(app.App.Icon())
		app.setupTrayMenu()
	} else {
		slog.Warn(config.ErrTrayNotSupported,
			config.LogKeyComponent, config.CompUI)
	}

	go app.backgroundWorker()

	app.ShowDirectoryWindow()
	if app.Preferences.String(config.PrefSourceMode) == "" {
		app.ShowSettingsWindow()
	}
	app.App.Run()
}

// watchPreferences monitors changes to settings to trigger immediate updates.
func (app *DirectoryApp) watchPreferences() {
	app.Preferences.AddChangeListener(func() {
		select {
		case app.configChan <- config.PrefInterval:
		default:
		}
	})
}

// setupTrayMenu constructs the system tray menu.
func (app *DirectoryApp) setupTrayMenu() {
	// The status item opens the directory window.
	app.TrayStatusItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuOpen), func() {
		app.ShowDirectoryWindow()
	})

	app.TrayReloadItem = fyne.NewMenuItem(app.GetMsg(config.TKeyBtnReload), func() {
		go app.performLoad(true)
	})

	app.TraySettingsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyBtnSettings), func() {
		app.ShowSettingsWindow()
	})

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayStatusItem,
		fyne.NewMenuItemSeparator(),
		app.TrayReloadItem,
		app.TraySettingsItem,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
}

// RefreshTrayMenu updates localized labels in the tray menu.
func (app *DirectoryApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	app.TrayReloadItem.Label = app.GetMsg(config.TKeyBtnReload)
	app.TraySettingsItem.Label = app.GetMsg(config.TKeyBtnSettings)
	app.updateTrayStatus(app.Browser.Len())
}

// backgroundWorker loads the dataset at startup, then reloads it on the configured interval.
func (app *DirectoryApp) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	app.performLoad(false)

	getInterval := func() time.Duration {
		val := app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultRefreshMin)
		if val <= config.DisabledInterval {
			return 0
		}
		return time.Duration(val) * time.Minute
	}

	currentDuration := getInterval()
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	resetTicker := func(d time.Duration) {
		if d > 0 {
			ticker.Reset(d)
		} else {
			ticker.Stop()
		}
	}
	resetTicker(currentDuration)

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, currentDuration)

	for {
		select {
		case <-app.Ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-app.configChan:
			newDuration := getInterval()
			if newDuration != currentDuration {
				log.Info(config.MsgUpdateLoad, config.LogKeyOld, currentDuration, config.LogKeyNew, newDuration)
				currentDuration = newDuration
				resetTicker(currentDuration)
			}

		case <-ticker.C:
			app.performLoad(false)
		}
	}
}

// performLoad reads the configured source and publishes the records to the directory
// window, the tray and the feed server. A failed load keeps the previous dataset.
func (app *DirectoryApp) performLoad(manual bool) {
	slog.Info(config.MsgLoadReq,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyManual, manual)

	people, err := app.Loader.Load(app.Ctx, app.loadSourceConfig())
	if err != nil {
		if app.Ctx.Err() != nil {
			return
		}
		slog.Error(config.ErrLoadFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		if manual {
			app.App.SendNotification(fyne.NewNotification(config.TitleLoadError, app.GetMsg(config.TKeyNotifError)))
		}
		fyne.Do(func() { app.updateTrayStatus(-1) })
		return
	}

	app.Browser.SetPeople(people)
	app.Server.Update(people)

	fyne.Do(func() {
		app.updateTrayStatus(len(people))
		app.refreshDirectoryView()
	})

	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName,
			app.countMsg(config.TKeyNotifLoaded, config.FallbackTrayCount, len(people))))
	}
}

// updateTrayStatus shows how many people are loaded, or an error marker when count < 0.
func (app *DirectoryApp) updateTrayStatus(count int) {
	if app.Menu == nil || app.TrayStatusItem == nil {
		return
	}

	label := config.FallbackTrayError
	if count >= 0 {
		label = app.countMsg(config.TKeyTrayStatus, config.FallbackTrayCount, count)
	}

	app.TrayStatusItem.Label = label
	app.Menu.Refresh()
}

// loadSourceConfig assembles the loader configuration from UI preferences and Keyring.
func (app *DirectoryApp) loadSourceConfig() engine.SourceConfig {
	cfg := engine.SourceConfig{
		Mode:      app.Preferences.String(config.PrefSourceMode),
		LocalPath: app.Preferences.String(config.PrefLocalPath),
		WebURL:    app.Preferences.String(config.PrefWebURL),
		WebUser:   app.Preferences.String(config.PrefUsername),
	}

	if cfg.WebUser != "" {
		if p, err := keyring.Get(config.KeyringService, cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}

	return cfg
}
