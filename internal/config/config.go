package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Directory/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Directory"
	AppID             = "com.github.tartampluch.go-directory"
	KeyringService    = "com.github.tartampluch.go-directory"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion = "version"
	FlagDebug   = "debug"
	FlagData    = "data"
	FlagFirst   = "first"
	FlagLast    = "last"
	FlagMonth   = "month"
	FlagDay     = "day"
	FlagYear    = "year"
	FlagFamily  = "family"
	FlagPassed  = "passed"
	FlagAll     = "all"
	FlagICS     = "ics"
	FlagJSON    = "json"

	FlagDescVersion = "Show application version and exit"
	FlagDescDebug   = "Enable debug logging"
	FlagDescData    = "Dataset file to query without starting the desktop UI (.json, .yaml, .hjson, .vcf)"
	FlagDescFirst   = "First name prefix"
	FlagDescLast    = "Last name prefix"
	FlagDescMonth   = `Birth month name, or "all months"`
	FlagDescDay     = "Birth day"
	FlagDescYear    = "Birth year"
	FlagDescFamily  = "Family tag"
	FlagDescPassed  = "Only people who passed away"
	FlagDescAll     = "Show every record, ignoring filters"
	FlagDescICS     = "Print the matches as an iCalendar feed"
	FlagDescJSON    = "Print the matches as JSON records"

	MsgVersionOutput = "%s version %s (commit %s, built %s, %s/%s)\n"
)

// -----------------------------------------------------------------------------
// Filtering
// -----------------------------------------------------------------------------

const (
	// AllMonths is the month criterion matching any record with a recognized month.
	AllMonths = "all months"

	// DefaultCollation is the locale used to order names when no UI language is set.
	DefaultCollation = "en"
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	SettingsWindowWidth = 600
	MainWindowWidth     = 760
	MainWindowHeight    = 640

	// Preference Keys
	PrefWebURL     = "web_url"
	PrefUsername   = "username"
	PrefLanguage   = "language"
	PrefInterval   = "refresh_interval_min"
	PrefServerPort = "server_port"
	PrefSourceMode = "source_mode"
	PrefLocalPath  = "local_path"
	PrefLastRun    = "last_run_version"

	// Input limits for the numeric filter entries.
	MaxDayDigits  = 2
	MaxYearDigits = 4

	// Display
	CountSuffixFormat = "%s (%d)"
	ResultCountFormat = "%d result(s) found"
	LogMsgOpenWin     = "Opening directory window"
	LogMsgRefreshView = "Directory view refreshed"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle      = "win_title"
	TKeyWinSettings   = "win_settings_title"
	TKeyPhFirstName   = "ph_first_name"
	TKeyPhLastName    = "ph_last_name"
	TKeyPhDay         = "ph_day"
	TKeyPhYear        = "ph_year"
	TKeyPhMonth       = "ph_month"
	TKeyPhFamily      = "ph_family"
	TKeyOptAllMonths  = "opt_all_months"
	TKeyChkPassed     = "chk_passed_away"
	TKeyBtnClear      = "btn_clear_filters"
	TKeyBtnShowAll    = "btn_show_all"
	TKeyBtnClearRes   = "btn_clear_results"
	TKeyBtnSettings   = "btn_settings"
	TKeyBtnReload     = "btn_reload"
	TKeyOptAnyFamily  = "opt_any_family"
	TKeyMenuOpen      = "menu_open"
	TKeyTrayStatus    = "tray_status"  // Requires Count, plural
	TKeyResultCount   = "result_count" // Requires Count, plural
	TKeyNoResults     = "no_results"
	TKeyLblBorn       = "lbl_born"        // Requires Date
	TKeyLblPassedAway = "lbl_passed_away" // Requires Date, Name
	TKeyLblPassedNoDt = "lbl_passed_away_no_date"
	TKeyNotifError    = "notif_err_load"
	TKeyNotifLoaded   = "notif_loaded" // Requires Count
	TKeyModeWeb       = "mode_web"
	TKeyModeLocal     = "mode_local"
	TKeyLblLanguage   = "lbl_language"
	TKeyHelpLanguage  = "help_language"
	TKeyLblMinutes    = "lbl_minutes_suffix"
	TKeyLblRefresh    = "lbl_refresh_interval"
	TKeyHelpInterval  = "help_interval"
	TKeyLblPort       = "lbl_server_port"
	TKeyHelpPort      = "help_port"
	TKeyLblGeneral    = "lbl_general"
	TKeyBtnSave       = "btn_save"
	TKeyBtnCancel     = "btn_cancel"
	TKeyLblFooter     = "lbl_footer"
	TKeyBtnBrowse     = "btn_browse"
	TKeyLblURL        = "lbl_url"
	TKeyHelpURL       = "help_url"
	TKeyLblUser       = "lbl_user"
	TKeyLblPass       = "lbl_pass"
	TKeyLblSource     = "lbl_source"
	TKeyEvtSummary    = "event_summary"     // Requires Name
	TKeyEvtSummaryAge = "event_summary_age" // Requires Name, Age
	TKeyEvtMemorial   = "event_summary_memorial"

	// Validation Errors (UI)
	TKeyErrPortReq   = "err_port_required"
	TKeyErrPortNum   = "err_port_number"
	TKeyErrPortRange = "err_port_range"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb     = "web"
	SourceModeLocal   = "local"
	DefaultPort       = "18081"
	DefaultRefreshMin = 60
	DefaultLanguage   = "en"
	DefaultLeapYear   = 2000 // Leap year used to validate month/day pairs without a year
	UIDSalt           = "go-directory-v1-"
	DisabledInterval  = 0
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Directory//Engine//EN"
	ICalCalName = "Directory Birthdays"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "godirectory"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropCategories = "CATEGORIES"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	// vCard fields. DEATHDATE comes from RFC 6474.
	VCardBDAY       = "BDAY"
	VCardFN         = "FN"
	VCardCategories = "CATEGORIES"
	VCardNote       = "NOTE"
	VCardDeathDate  = "DEATHDATE"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"

	// Dataset formats
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatHJSON = "hjson"
	FormatVCard = "vcard"

	// File Extensions
	ExtJSON  = ".json"
	ExtYAML  = ".yaml"
	ExtYML   = ".yml"
	ExtHJSON = ".hjson"
	ExtJS    = ".js"
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"

	// Content sniffing markers
	SniffVCard     = "BEGIN:VCARD"
	SniffJSONArray = "["
	SniffYAMLList  = "-"
)

// SupportedExtensions lists the dataset extensions accepted by the file picker.
var SupportedExtensions = []string{ExtJSON, ExtYAML, ExtYML, ExtHJSON, ExtJS, ExtVCF, ExtVCard}

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 16 * 1024 * 1024 // 16MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	RouteCalendar       = "/birthdays.ics"
	AddrSeparator       = ":"
)

// Feed query parameters.
const (
	QueryFirst  = "first"
	QueryLast   = "last"
	QueryMonth  = "month"
	QueryDay    = "day"
	QueryYear   = "year"
	QueryFamily = "family"
	QueryPassed = "passed"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrFormatUnknown    = "unrecognized dataset format"
	ErrDatasetDecode    = "failed to decode dataset"
	ErrDatasetRead      = "failed to read dataset"
	ErrMissingName      = "record is missing firstName or lastName"
	ErrNumericValue     = "expected a number or string scalar"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrLocNotInit       = "localizer not initialized"
	ErrKeyringSave      = "failed to save credentials to keyring"
	ErrLoadFailed       = "dataset load failed"
	ErrCalendarBuild    = "failed to build calendar"
	ErrUnexpectedStatus = "server returned unexpected status"
	ErrResponseTooLarge = "response exceeds maximum size"
	ErrTrayNotSupported = "system tray not supported on this platform"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Directory initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackSummary       = "Birthday: %s"
	FallbackSummaryAge    = "Birthday: %s (%d)"
	FallbackSummaryMemory = "In memory of %s"
	FallbackBorn          = "Born: %s"
	FallbackPassedAway    = "Passed Away: %s --- RIP %s"
	FallbackPassedNoDate  = "Passed Away"
	FallbackNoResults     = "No results found."

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	TitleStartupError = "Startup Error"
	FallbackTrayError = "Error"
	FallbackTrayCount = "%d people"
	TitleLoadError    = "Load Error"

	MsgPortBusy      = "Port %s is busy or unavailable."
	MsgLoadStarted   = "Dataset load started"
	MsgLoadFinished  = "Dataset loaded"
	MsgLoadReq       = "Dataset load requested"
	MsgWorkerStart   = "Background worker started"
	MsgWorkerStop    = "Worker stopping due to context cancellation"
	MsgUpdateLoad    = "Updating reload interval"
	MsgAppStop       = "Application stopped gracefully"
	MsgCtxCancel     = "Context cancelled, shutting down UI"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedDate   = "Skipping invalid date format"
	MsgSkippedRecord = "Skipping record without a usable birthday"
	MsgFilterApplied = "Filter applied"
	MsgCalendarBuilt = "Calendar generation successful"
	MsgAppStarting   = "Starting application"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgDatasetSwap   = "Feed dataset updated"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgPassFail      = "Password retrieval failed (might be empty)"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgSaving        = "Saving preferences"
	MsgQueryDone     = "Query completed"
	MsgFeedServed    = "Feed served"

	PlaceholderURL = "https://..."
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyFormat    = "format"
	LogKeyInterval  = "interval"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyUser      = "user"
	LogKeyRecords   = "records"
	LogKeyMatched   = "matched"
	LogKeyEvents    = "events"
	LogKeyCriteria  = "criteria"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyManual    = "manual"
	LogKeyValue     = "value"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDuration  = "duration_ms"
	LogKeyLength    = "content_length"
	LogKeyQuery     = "query"

	// Criteria fields
	LogKeyFirst  = "first"
	LogKeyLast   = "last"
	LogKeyMonth  = "month"
	LogKeyDay    = "day"
	LogKeyYear   = "year"
	LogKeyFamily = "family"
	LogKeyPassed = "passed_only"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI      = "ui"
	CompUISet   = "ui_settings"
	CompEngine  = "engine"
	CompLoader  = "loader"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompI18n    = "i18n"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	LayoutColumnsDouble = 2
	LayoutColumnsTriple = 3
)
