package ui

import (
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-directory/internal/config"
	"github.com/tartampluch/go-directory/internal/engine"
)

// searchWidgets holds the directory window controls that are refreshed after loads.
type searchWidgets struct {
	firstEntry   *widget.Entry
	lastEntry    *widget.Entry
	dayEntry     *NumericalEntry
	yearEntry    *NumericalEntry
	monthSelect  *widget.Select
	familySelect *widget.Select
	passedCheck  *widget.Check

	countLabel     *widget.Label
	noResultsLabel *widget.Label
	results        *fyne.Container

	// monthValues and familyValues are the criteria behind each select option.
	monthValues  []string
	familyValues []string
}

// ShowDirectoryWindow displays the search window.
// It implements a singleton pattern: if the window is already open, it requests focus.
func (app *DirectoryApp) ShowDirectoryWindow() {
	if app.MainWindow != nil {
		app.MainWindow.Show()
		app.MainWindow.RequestFocus()
		return
	}

	slog.Info(config.LogMsgOpenWin,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCount, app.Browser.Len())

	w := app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	w.Resize(fyne.NewSize(config.MainWindowWidth, config.MainWindowHeight))
	app.MainWindow = w

	sw := &searchWidgets{}
	app.search = sw

	// Every edit produces a new criteria snapshot, then the view is redrawn.
	edit := func(f engine.Field) func(string) {
		return func(s string) {
			app.Browser.Update(func(c engine.Criteria) engine.Criteria { return c.Set(f, s) })
			app.refreshDirectoryView()
		}
	}

	sw.firstEntry = widget.NewEntry()
	sw.firstEntry.SetPlaceHolder(app.GetMsg(config.TKeyPhFirstName))
	sw.firstEntry.OnChanged = edit(engine.FieldFirstName)

	sw.lastEntry = widget.NewEntry()
	sw.lastEntry.SetPlaceHolder(app.GetMsg(config.TKeyPhLastName))
	sw.lastEntry.OnChanged = edit(engine.FieldLastName)

	sw.dayEntry = NewLimitedNumericalEntry(config.MaxDayDigits)
	sw.dayEntry.SetPlaceHolder(app.GetMsg(config.TKeyPhDay))
	sw.dayEntry.OnChanged = edit(engine.FieldBirthDay)

	sw.yearEntry = NewLimitedNumericalEntry(config.MaxYearDigits)
	sw.yearEntry.SetPlaceHolder(app.GetMsg(config.TKeyPhYear))
	sw.yearEntry.OnChanged = edit(engine.FieldBirthYear)

	monthEdit := edit(engine.FieldBirthMonth)
	sw.monthSelect = widget.NewSelect(nil, func(string) {
		if i := sw.monthSelect.SelectedIndex(); i >= 0 && i < len(sw.monthValues) {
			monthEdit(sw.monthValues[i])
		}
	})
	sw.monthSelect.PlaceHolder = app.GetMsg(config.TKeyPhMonth)

	familyEdit := edit(engine.FieldFamily)
	sw.familySelect = widget.NewSelect(nil, func(string) {
		if i := sw.familySelect.SelectedIndex(); i >= 0 && i < len(sw.familyValues) {
			familyEdit(sw.familyValues[i])
		}
	})
	sw.familySelect.PlaceHolder = app.GetMsg(config.TKeyPhFamily)

	sw.passedCheck = widget.NewCheck(app.GetMsg(config.TKeyChkPassed), func(b bool) {
		app.Browser.Update(func(c engine.Criteria) engine.Criteria { return c.WithPassedAwayOnly(b) })
		app.refreshDirectoryView()
	})

	btnClear := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnClear), theme.ContentClearIcon(), app.clearFilters)
	btnShowAll := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnShowAll), theme.ListIcon(), func() {
		app.Browser.ShowAll()
		app.refreshDirectoryView()
	})
	btnShowAll.Importance = widget.HighImportance
	btnClearRes := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnClearRes), theme.VisibilityOffIcon(), func() {
		app.Browser.ClearResults()
		app.refreshDirectoryView()
	})
	btnReload := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnReload), theme.ViewRefreshIcon(), func() {
		go app.performLoad(true)
	})
	btnSettings := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSettings), theme.SettingsIcon(), app.ShowSettingsWindow)

	sw.countLabel = widget.NewLabel("")
	sw.countLabel.TextStyle = fyne.TextStyle{Bold: true}
	sw.noResultsLabel = widget.NewLabel(app.noResultsText())
	sw.noResultsLabel.Alignment = fyne.TextAlignCenter
	sw.results = container.NewVBox()

	filters := container.NewVBox(
		container.NewGridWithColumns(config.LayoutColumnsDouble, sw.firstEntry, sw.lastEntry),
		container.NewGridWithColumns(config.LayoutColumnsTriple, sw.monthSelect, sw.dayEntry, sw.yearEntry),
		container.NewGridWithColumns(config.LayoutColumnsDouble, sw.familySelect, sw.passedCheck),
		container.NewGridWithColumns(config.LayoutColumnsTriple, btnClear, btnShowAll, btnClearRes),
	)
	header := container.NewVBox(
		container.NewBorder(nil, nil, nil, container.NewHBox(btnReload, btnSettings), filters),
		widget.NewSeparator(),
		sw.countLabel,
		sw.noResultsLabel,
	)

	w.SetContent(container.NewBorder(header, nil, nil, nil, container.NewVScroll(sw.results)))
	w.SetOnClosed(func() {
		app.MainWindow = nil
		app.search = nil
	})
	if app.Tray != nil {
		// With a tray icon the app keeps running in the background.
		w.SetCloseIntercept(w.Hide)
	}

	app.refreshDirectoryView()
	w.Show()
}

// clearFilters resets every filter widget and the criteria behind them.
func (app *DirectoryApp) clearFilters() {
	if sw := app.search; sw != nil {
		sw.firstEntry.SetText("")
		sw.lastEntry.SetText("")
		sw.dayEntry.SetText("")
		sw.yearEntry.SetText("")
		sw.monthSelect.ClearSelected()
		sw.familySelect.ClearSelected()
		sw.passedCheck.SetChecked(false)
	}
	app.Browser.ClearFilters()
	app.refreshDirectoryView()
}

// refreshDirectoryView redraws select options and results from the Browser state.
// Must run on the UI goroutine.
func (app *DirectoryApp) refreshDirectoryView() {
	sw := app.search
	if sw == nil {
		return
	}

	app.refreshMonthOptions(sw)
	app.refreshFamilyOptions(sw)

	view := app.Browser.View()

	if view.Count > 0 {
		sw.countLabel.SetText(app.countMsg(config.TKeyResultCount, config.ResultCountFormat, view.Count))
		sw.countLabel.Show()
	} else {
		sw.countLabel.Hide()
	}
	if view.NoMatches {
		sw.noResultsLabel.SetText(app.noResultsText())
		sw.noResultsLabel.Show()
	} else {
		sw.noResultsLabel.Hide()
	}

	objects := make([]fyne.CanvasObject, 0, len(view.Units))
	for _, u := range view.Units {
		objects = append(objects, unitCard(u))
	}
	sw.results.Objects = objects
	sw.results.Refresh()

	slog.Debug(config.LogMsgRefreshView,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCount, view.Count)
}

// refreshMonthOptions labels every month with its record count, keeping the selection.
func (app *DirectoryApp) refreshMonthOptions(sw *searchWidgets) {
	counts := app.Browser.MonthCounts()

	values := []string{config.AllMonths}
	options := []string{fmt.Sprintf(config.CountSuffixFormat, app.GetMsg(config.TKeyOptAllMonths), counts.Total)}
	for _, m := range engine.Months {
		values = append(values, m.String())
		options = append(options, fmt.Sprintf(config.CountSuffixFormat, m.String(), counts.Count(m)))
	}

	selected := sw.monthSelect.SelectedIndex()
	sw.monthValues = values
	sw.monthSelect.Options = options
	if selected >= 0 && selected < len(options) {
		// Assigned directly so that relabelling does not count as an edit.
		sw.monthSelect.Selected = options[selected]
	}
	sw.monthSelect.Refresh()
}

// refreshFamilyOptions lists the dataset's families, keeping the selected one if it still exists.
func (app *DirectoryApp) refreshFamilyOptions(sw *searchWidgets) {
	families := app.Browser.Families()

	values := append([]string{""}, families...)
	options := append([]string{app.GetMsg(config.TKeyOptAnyFamily)}, families...)

	current := app.Browser.Criteria().Family
	sw.familyValues = values
	sw.familySelect.Options = options
	if current != "" {
		for i, v := range values {
			if v == current {
				sw.familySelect.Selected = options[i]
			}
		}
	}
	sw.familySelect.Refresh()
}

func (app *DirectoryApp) noResultsText() string {
	msg := app.GetMsg(config.TKeyNoResults)
	if msg == config.TKeyNoResults {
		return config.FallbackNoResults
	}
	return msg
}

// unitCard renders one person: name as title, birth date as subtitle, then the
// passed-away marker and comment when present.
func unitCard(u engine.DisplayUnit) fyne.CanvasObject {
	var lines []fyne.CanvasObject
	if u.PassedAway != "" {
		lines = append(lines, widget.NewLabelWithStyle(u.PassedAway, fyne.TextAlignLeading, fyne.TextStyle{Italic: true}))
	}
	if u.Comment != "" {
		comment := widget.NewLabel(u.Comment)
		comment.Wrapping = fyne.TextWrapWord
		lines = append(lines, comment)
	}

	var content fyne.CanvasObject
	if len(lines) > 0 {
		content = container.NewVBox(lines...)
	}
	return widget.NewCard(u.Name, u.Born, content)
}
