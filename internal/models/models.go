package models

// AppState holds the application state
type AppState struct {
	Width    int
	Height   int
	ViewMode ViewMode

	// Target table
	Schema string
	Table  string

	// Database state
	Connected  bool
	MatchCount int64 // -1 until counted
}

// ViewMode identifies the current view
type ViewMode int

const (
	NormalMode ViewMode = iota
	HelpMode
	PresetsMode
)

// NewAppState creates a new AppState with defaults
func NewAppState() AppState {
	return AppState{
		Width:      80,
		Height:     24,
		ViewMode:   NormalMode,
		Schema:     "public",
		MatchCount: -1,
	}
}

// QualifiedTable returns "schema.table"
func (s AppState) QualifiedTable() string {
	if s.Table == "" {
		return ""
	}
	return s.Schema + "." + s.Table
}
