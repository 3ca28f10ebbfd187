package config

import "time"

// Application constants
const (
	AppName    = "CRVX"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. CRVX_SOURCE_KIND.
	EnvPrefix = "CRVX"
)

// Source defaults. The workbook layout mirrors the climbing log spreadsheet.
const (
	SourceKindSheets   = "sheets"
	SourceKindWorkbook = "workbook"

	DefaultSpreadsheetName = "Climbing Data Long"
	DefaultClimbsSheet     = "Indoor Bouldering Climbs"
	DefaultClimbsRange     = "raw_climb_data"
	DefaultSessionsSheet   = "Indoor Bouldering Sessions"
	DefaultSessionsRange   = "raw_session_data"
	DefaultOutdoorSheet    = "Outdoor Bouldering"

	DefaultCacheTTL          = 60 * time.Second
	DefaultRequestsPerMinute = 60
)

// Scopes requested for the service account.
var SheetsScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets.readonly",
	"https://www.googleapis.com/auth/drive.metadata.readonly",
}

// SpreadsheetMimeType identifies native Google Sheets files in Drive.
const SpreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// Table names used in warnings, logs, metrics and export file names.
const (
	TableClimbs   = "climbs"
	TableSessions = "sessions"
	TableOutdoor  = "outdoor"
)

// Raw spreadsheet headers, as typed by hand in the log.
const (
	HeaderDate            = "Date"
	HeaderVGrade          = "V Grade"
	HeaderCountMultiplier = "Count Multiplier"
	HeaderAttempts        = "Attempts (w/ send)"
	HeaderSent            = "Sent"
	HeaderWorkoutType     = "workout type"
	HeaderClimbingTime    = "climbing time"
	HeaderTotalTime       = "total time"
	HeaderGrade           = "Grade"
)

// Canonical field names after normalization.
const (
	FieldDate            = "date"
	FieldGradeLabel      = "v_grade"
	FieldCountMultiplier = "count_multiplier"
	FieldAttempts        = "attempts"
	FieldSent            = "sent"
	FieldWorkoutType     = "workout_type"
	FieldClimbingTime    = "climbing_time"
	FieldTotalTime       = "total_time"
)

// Column renames per table. Values are canonical field names.
var (
	ClimbColumns = map[string]string{
		HeaderDate:            FieldDate,
		HeaderVGrade:          FieldGradeLabel,
		HeaderCountMultiplier: FieldCountMultiplier,
		HeaderAttempts:        FieldAttempts,
		HeaderSent:            FieldSent,
	}
	SessionColumns = map[string]string{
		HeaderDate:         FieldDate,
		HeaderWorkoutType:  FieldWorkoutType,
		HeaderClimbingTime: FieldClimbingTime,
		HeaderTotalTime:    FieldTotalTime,
	}
	OutdoorColumns = map[string]string{
		HeaderDate:  FieldDate,
		HeaderGrade: FieldGradeLabel,
	}
)

// Cell formats
const (
	DateLayout    = "02/01/2006"
	GradePrefix   = "V"
	BeginnerLabel = "B"
	TrueLiteral   = "TRUE"
)

// Pipeline defaults
const (
	DefaultSeed         = 42
	DefaultDropBeginner = true
)

// DefaultTopK is the set of K values for top-K monthly means.
var DefaultTopK = []int{1, 3, 5, 10}

// Date filter presets
const (
	RangeAll       = "all"
	RangeYTD       = "YTD"
	RangeOneYear   = "1y"
	RangeSixMonths = "6m"
	RangeCustom    = "custom"
)
