package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-directory/internal/config"
	"github.com/tartampluch/go-directory/internal/engine"
	"github.com/tartampluch/go-directory/internal/server"
	"github.com/zalando/go-keyring"
	"golang.org/x/text/language"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the engine.DataFetcher interface using testify/mock.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// MockTray implements minimal system tray functionality for headless testing.
type MockTray struct {
	Menu *fyne.Menu
}

func (m *MockTray) SetSystemTrayMenu(menu *fyne.Menu) {
	m.Menu = menu
}

func (m *MockTray) SetSystemTrayIcon(icon fyne.Resource) {}
func (m *MockTray) SetSystemTrayWindow(w fyne.Window)    {}
func (m *MockTray) Run()                                 {}
func (m *MockTray) Quit()                                {}

const testDataset = `[
  {"firstName": "Mary", "lastName": "Smith", "birthMonth": "May", "birthDay": 3, "birthYear": 1980, "family": "My People"},
  {"firstName": "John", "lastName": "Adams", "birthMonth": "June", "birthDay": "12"},
  {"firstName": "Rex", "lastName": "Doggo", "birthMonth": "May", "birthDay": 1, "family": "pet", "passedAway": "2020"}
]`

// -----------------------------------------------------------------------------
// Test Setup Helper
// -----------------------------------------------------------------------------

// setupTestApp initializes a headless Fyne app with mocked dependencies.
func setupTestApp(t *testing.T) (*DirectoryApp, *MockFetcher, *MockTray) {
	keyring.MockInit()

	// Initialize headless driver
	a := test.NewApp()

	// Use port "0" to bind to any free port during tests
	srv := server.NewFeedServer("0",
		engine.NewFilterEngine(language.English),
		&engine.CalendarBuilder{Clock: MockClock{CurrentTime: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}})
	fetcher := new(MockFetcher)
	mockTray := &MockTray{}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	app := NewDirectoryApp(a, ctx, srv, fetcher)

	// Inject mocks
	app.Tray = mockTray

	// Manually load I18n as Run() is skipped
	app.Preferences.SetString(config.PrefLanguage, "en")
	app.SetupI18n()

	return app, fetcher, mockTray
}

func useWebSource(app *DirectoryApp, fetcher *MockFetcher, body string) {
	app.Preferences.SetString(config.PrefSourceMode, config.SourceModeWeb)
	app.Preferences.SetString(config.PrefWebURL, "http://test.local/people.json")
	fetcher.On("Fetch", mock.Anything, "http://test.local/people.json", mock.Anything, mock.Anything).
		Return(io.NopCloser(bytes.NewBufferString(body)), nil)
}

// -----------------------------------------------------------------------------
// Localization Tests
// -----------------------------------------------------------------------------

func TestLocalization_Switching(t *testing.T) {
	app, _, _ := setupTestApp(t)

	// Case 1: English (Default)
	assert.Equal(t, "Settings...", app.GetMsg(config.TKeyBtnSettings))

	// Case 2: French
	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	assert.Equal(t, "Paramètres...", app.GetMsg(config.TKeyBtnSettings))

	// Unknown keys come back unchanged.
	assert.Equal(t, "no_such_key", app.GetMsg("no_such_key"))
}

func TestLocalization_Plurals(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.Equal(t, "1 result found", app.countMsg(config.TKeyResultCount, config.ResultCountFormat, 1))
	assert.Equal(t, "4 results found", app.countMsg(config.TKeyResultCount, config.ResultCountFormat, 4))

	app.Localizer = nil
	assert.Equal(t, "4 result(s) found", app.countMsg(config.TKeyResultCount, config.ResultCountFormat, 4))
}

func TestLocalization_SummaryFormatter(t *testing.T) {
	app, _, _ := setupTestApp(t)

	formatter := app.buildSummaryFormatter()
	alice := engine.Person{FirstName: "Alice", LastName: "Doe"}

	// Scenario 1: Age is known (> 0)
	assert.Equal(t, "Birthday: Alice Doe (30)", formatter(alice, 30, true))

	// Scenario 2: Age unknown
	res := formatter(alice, 0, false)
	assert.Equal(t, "Birthday: Alice Doe", res)
	assert.NotContains(t, res, "(0)", "Should not display age 0 if year unknown")

	// Scenario 3: Passed away
	alice.PassedAway = engine.PassedAway{Passed: true}
	assert.Equal(t, "In memory of Alice Doe", formatter(alice, 30, true))
}

func TestLocalization_SummaryFollowsLanguage(t *testing.T) {
	app, _, _ := setupTestApp(t)
	formatter := app.buildSummaryFormatter()
	alice := engine.Person{FirstName: "Alice", LastName: "Doe"}

	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	assert.Equal(t, "Anniversaire : Alice Doe (30)", formatter(alice, 30, true))

	// The UI-side localizer going away does not affect feed summaries.
	app.Localizer = nil
	assert.Equal(t, "Anniversaire : Alice Doe", formatter(alice, 0, false))
}

// TestLocalization_SwitchWhileServing changes the language while the feed renders
// summaries on other goroutines. Run this with `go test -race`.
func TestLocalization_SwitchWhileServing(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Server.Builder.FormatSummary = app.buildSummaryFormatter()
	app.Server.Update([]engine.Person{
		{FirstName: "Mary", LastName: "Smith", BirthMonth: "May", BirthDay: "3", BirthYear: "1980"},
	})
	handler := app.Server.Handler()

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
				assert.Equal(t, http.StatusOK, w.Code)
			}
		}()
	}

	for i := 0; i < 50; i++ {
		lang := "en"
		if i%2 == 0 {
			lang = "fr"
		}
		app.Preferences.SetString(config.PrefLanguage, lang)
		app.UpdateLocalizer()
	}
	close(done)
	wg.Wait()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, w.Body.String(), "Birthday: Mary Smith")
}

func TestLocalization_Renderer(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()

	r := app.buildRenderer()
	u := r.Unit(engine.Person{
		FirstName: "Rex", LastName: "Doggo", BirthMonth: "May", BirthDay: "1",
		PassedAway: engine.PassedAway{Passed: true, Date: "2020"},
	})

	assert.NotEqual(t, "Born: May 1", u.Born)
	assert.Contains(t, u.Born, "May 1")
	assert.Contains(t, u.PassedAway, "Rex Doggo")
}

// -----------------------------------------------------------------------------
// Configuration & Preferences Tests
// -----------------------------------------------------------------------------

func TestConfiguration_Mapping(t *testing.T) {
	app, _, _ := setupTestApp(t)

	app.Preferences.SetString(config.PrefSourceMode, config.SourceModeWeb)
	app.Preferences.SetString(config.PrefWebURL, "https://secure.example.com/people.yaml")
	app.Preferences.SetString(config.PrefUsername, "admin")
	app.Preferences.SetString(config.PrefLocalPath, "/tmp/people.json")
	require.NoError(t, keyring.Set(config.KeyringService, "admin", "s3cret"))

	cfg := app.loadSourceConfig()

	assert.Equal(t, config.SourceModeWeb, cfg.Mode)
	assert.Equal(t, "https://secure.example.com/people.yaml", cfg.WebURL)
	assert.Equal(t, "admin", cfg.WebUser)
	assert.Equal(t, "s3cret", cfg.WebPass)
	assert.Equal(t, "/tmp/people.json", cfg.LocalPath)
}

func TestConfiguration_MissingPassword(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Preferences.SetString(config.PrefUsername, "nobody")

	cfg := app.loadSourceConfig()

	assert.Equal(t, "nobody", cfg.WebUser)
	assert.Empty(t, cfg.WebPass)
}

func TestConfiguration_WorkerSignal(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.watchPreferences()

	// Capture signal
	signalReceived := make(chan bool)
	go func() {
		select {
		case key := <-app.configChan:
			signalReceived <- key == config.PrefInterval
		case <-time.After(500 * time.Millisecond):
			signalReceived <- false
		}
	}()

	// Trigger change
	app.Preferences.SetInt(config.PrefInterval, 120)

	assert.True(t, <-signalReceived, "Changing interval should notify background worker")
}

func TestValidatePort(t *testing.T) {
	app, _, _ := setupTestApp(t)

	tests := []struct {
		input   string
		wantErr string
	}{
		{"18081", ""},
		{"1", ""},
		{"65535", ""},
		{"", "Port is required"},
		{"12ab", "Port must be a number"},
		{"0", "Port must be between 1 and 65535"},
		{"70000", "Port must be between 1 and 65535"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := app.validatePort(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestSaveSettings(t *testing.T) {
	app, _, _ := setupTestApp(t)

	sw := app.newSettingsWidgets()
	sw.modeSelect.SetSelected(app.GetMsg(config.TKeyModeLocal))
	sw.pathEntry.SetText("/nonexistent/people.json")
	sw.userEntry.SetText("admin")
	sw.passEntry.SetText("s3cret")
	sw.entryInterval.SetText("0")
	sw.entryPort.SetText("18090")

	app.saveSettings(sw)

	assert.Equal(t, config.SourceModeLocal, app.Preferences.String(config.PrefSourceMode))
	assert.Equal(t, "/nonexistent/people.json", app.Preferences.String(config.PrefLocalPath))
	assert.Equal(t, config.DisabledInterval, app.Preferences.Int(config.PrefInterval))
	assert.Equal(t, "18090", app.Preferences.String(config.PrefServerPort))

	pwd, err := keyring.Get(config.KeyringService, "admin")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pwd)
}

func TestSaveSettings_LanguageRebuildsWindow(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.ShowDirectoryWindow()
	require.NotNil(t, app.MainWindow)
	app.Browser.Update(func(c engine.Criteria) engine.Criteria { return c.Set(engine.FieldFirstName, "m") })

	sw := app.newSettingsWidgets()
	sw.langSelect.SetSelected("fr")
	sw.pathEntry.SetText("/nonexistent/people.json")
	app.saveSettings(sw)

	require.NotNil(t, app.MainWindow)
	assert.Equal(t, "Annuaire", app.MainWindow.Title())
	assert.False(t, app.Browser.Criteria().Active(), "Recreated widgets start empty")
}

// -----------------------------------------------------------------------------
// Load Integration Tests
// -----------------------------------------------------------------------------

func TestPerformLoad_Success(t *testing.T) {
	app, fetcher, mockTray := setupTestApp(t)
	app.setupTrayMenu()
	useWebSource(app, fetcher, testDataset)

	app.performLoad(true)

	fetcher.AssertExpectations(t)

	require.NotNil(t, mockTray.Menu)
	assert.Equal(t, "3 people", app.TrayStatusItem.Label)
	assert.Equal(t, 3, app.Browser.Len())

	// The feed server receives the same dataset.
	rec := httptest.NewRecorder()
	app.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/birthdays.ics?family=pet", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "In memory of Rex Doggo")
}

func TestPerformLoad_FailureKeepsDataset(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)
	app.setupTrayMenu()

	useWebSource(app, fetcher, testDataset)
	app.performLoad(false)
	require.Equal(t, 3, app.Browser.Len())

	app.Preferences.SetString(config.PrefWebURL, "http://down.local/people.json")
	fetcher.On("Fetch", mock.Anything, "http://down.local/people.json", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	app.performLoad(true)

	fetcher.AssertExpectations(t)
	assert.Equal(t, config.FallbackTrayError, app.TrayStatusItem.Label)
	assert.Equal(t, 3, app.Browser.Len(), "A failed reload keeps the previous records")
}

func TestPerformLoad_Cancelled(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)
	app.setupTrayMenu()
	app.TrayStatusItem.Label = "untouched"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	app.Ctx = ctx
	app.Preferences.SetString(config.PrefSourceMode, config.SourceModeWeb)
	app.Preferences.SetString(config.PrefWebURL, "http://test.local/people.json")
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, context.Canceled).Maybe()

	app.performLoad(false)

	assert.Equal(t, "untouched", app.TrayStatusItem.Label, "Shutdown is not reported as a load error")
}

func TestTrayStatusUpdate_Logic(t *testing.T) {
	app, _, mockTray := setupTestApp(t)
	app.setupTrayMenu()

	// 1. Error Case
	app.updateTrayStatus(-1)
	assert.Equal(t, config.FallbackTrayError, app.TrayStatusItem.Label)

	// 2. Singular
	app.updateTrayStatus(1)
	assert.Equal(t, "1 person", app.TrayStatusItem.Label)

	// 3. Plural
	app.updateTrayStatus(10)
	assert.Equal(t, "10 people", app.TrayStatusItem.Label)

	// 4. Language change relabels the menu
	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	app.RefreshTrayMenu()
	assert.Equal(t, "Recharger", app.TrayReloadItem.Label)
	assert.Equal(t, "0 personne", app.TrayStatusItem.Label)

	assert.NotNil(t, mockTray.Menu)
}

// -----------------------------------------------------------------------------
// Directory Window Tests
// -----------------------------------------------------------------------------

func TestDirectoryWindow_Search(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)
	useWebSource(app, fetcher, testDataset)
	app.performLoad(false)

	app.ShowDirectoryWindow()
	sw := app.search
	require.NotNil(t, sw)

	// Nothing is listed until a filter is set.
	assert.Empty(t, sw.results.Objects)
	assert.False(t, sw.countLabel.Visible())
	assert.False(t, sw.noResultsLabel.Visible())

	test.Type(sw.lastEntry, "sm")
	require.Len(t, sw.results.Objects, 1)
	card, ok := sw.results.Objects[0].(*widget.Card)
	require.True(t, ok)
	assert.Equal(t, "Mary Smith", card.Title)
	assert.Equal(t, "Born: May 3, 1980", card.Subtitle)
	assert.Equal(t, "1 result found", sw.countLabel.Text)

	test.Type(sw.lastEntry, "x")
	assert.Empty(t, sw.results.Objects)
	assert.True(t, sw.noResultsLabel.Visible())
	assert.Equal(t, "No results found.", sw.noResultsLabel.Text)
}

func TestDirectoryWindow_MonthSelect(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)
	useWebSource(app, fetcher, testDataset)
	app.performLoad(false)

	app.ShowDirectoryWindow()
	sw := app.search

	require.Len(t, sw.monthSelect.Options, 13)
	assert.Equal(t, "All Months (3)", sw.monthSelect.Options[0])
	assert.Equal(t, "May (2)", sw.monthSelect.Options[5])
	assert.Equal(t, "January (0)", sw.monthSelect.Options[1])

	sw.monthSelect.SetSelectedIndex(5)
	assert.Equal(t, "May", app.Browser.Criteria().BirthMonth)
	assert.Equal(t, "2 results found", sw.countLabel.Text)

	sw.monthSelect.SetSelectedIndex(0)
	assert.Equal(t, config.AllMonths, app.Browser.Criteria().BirthMonth)
	assert.Equal(t, "3 results found", sw.countLabel.Text)
	assert.Equal(t, "All Months (3)", sw.monthSelect.Selected, "Relabelling keeps the selection")
}

func TestDirectoryWindow_FamilySelect(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)
	useWebSource(app, fetcher, testDataset)
	app.performLoad(false)

	app.ShowDirectoryWindow()
	sw := app.search

	assert.Equal(t, []string{"Any family", "My People", "pet"}, sw.familySelect.Options)

	sw.familySelect.SetSelected("pet")
	assert.Equal(t, "pet", app.Browser.Criteria().Family)
	assert.Len(t, sw.results.Objects, 1)

	sw.familySelect.SetSelected("Any family")
	assert.Empty(t, app.Browser.Criteria().Family)
	assert.Empty(t, sw.results.Objects)
}

func TestDirectoryWindow_Modes(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)
	useWebSource(app, fetcher, testDataset)
	app.performLoad(false)

	app.ShowDirectoryWindow()
	sw := app.search

	app.Browser.ShowAll()
	app.refreshDirectoryView()
	assert.Len(t, sw.results.Objects, 3)

	app.Browser.ClearResults()
	app.refreshDirectoryView()
	assert.Empty(t, sw.results.Objects)
	assert.False(t, sw.noResultsLabel.Visible())

	test.Type(sw.firstEntry, "r")
	sw.passedCheck.SetChecked(true)
	assert.Len(t, sw.results.Objects, 1)

	app.clearFilters()
	assert.Empty(t, sw.firstEntry.Text)
	assert.False(t, sw.passedCheck.Checked)
	assert.False(t, app.Browser.Criteria().Active())
	assert.Empty(t, sw.results.Objects)
}

func TestDirectoryWindow_Singleton(t *testing.T) {
	app, _, _ := setupTestApp(t)

	app.ShowDirectoryWindow()
	first := app.MainWindow
	app.ShowDirectoryWindow()

	assert.Same(t, first, app.MainWindow)

	app.MainWindow.Close()
	assert.Nil(t, app.MainWindow)
	assert.Nil(t, app.search)
}

func TestUnitCard(t *testing.T) {
	full, ok := unitCard(engine.DisplayUnit{Name: "Rex Doggo", Born: "Born: May 1", PassedAway: "Passed Away", Comment: "good boy"}).(*widget.Card)
	require.True(t, ok)
	assert.Equal(t, "Rex Doggo", full.Title)
	assert.Equal(t, "Born: May 1", full.Subtitle)
	require.NotNil(t, full.Content)
	assert.Len(t, full.Content.(*fyne.Container).Objects, 2)

	bare, ok := unitCard(engine.DisplayUnit{Name: "Nina Nomonth"}).(*widget.Card)
	require.True(t, ok)
	assert.Empty(t, bare.Subtitle)
	assert.Nil(t, bare.Content)
}
