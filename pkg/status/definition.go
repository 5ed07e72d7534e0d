package status

// Definition is the static display metadata of a stage.
type Definition struct {
	Label       string
	Icon        string // glyph shown in lists and column headers
	IconName    string // plain name for renderers without emoji support
	Color       string // hex
	Ordinal     int
	Description string
}

// UnknownDefinition is used for statuses outside the pipeline.
var UnknownDefinition = Definition{
	Icon:        "\U0001F4CB", // 📋
	IconName:    "list",
	Color:       "#6B7280",
	Description: "Unrecognised status",
}

var definitions = map[code]Definition{
	codeToAnalyze: {
		Label:       "To Analyze",
		Icon:        "\U0001F50D", // 🔍
		IconName:    "search",
		Color:       "#F59E0B",
		Ordinal:     1,
		Description: "New job to review",
	},
	codeGenerateLetter: {
		Label:       "Generate Cover Letter",
		Icon:        "✍️", // ✍️
		IconName:    "pen",
		Color:       "#8B5CF6",
		Ordinal:     2,
		Description: "Cover letter to write",
	},
	codeReady: {
		Label:       "Ready",
		Icon:        "\U0001F4E4", // 📤
		IconName:    "outbox",
		Color:       "#3B82F6",
		Ordinal:     3,
		Description: "Ready to send",
	},
	codeApplied: {
		Label:       "Applied",
		Icon:        "✅", // ✅
		IconName:    "check",
		Color:       "#10B981",
		Ordinal:     4,
		Description: "Application sent",
	},
	codeRejected: {
		Label:       "Rejected",
		Icon:        "❌", // ❌
		IconName:    "cross",
		Color:       "#EF4444",
		Ordinal:     5,
		Description: "Application turned down",
	},
}

// Definition returns the display metadata for s. Unknown statuses get
// UnknownDefinition with their raw string as the label.
func (s Status) Definition() Definition {
	if !s.Known() {
		d := UnknownDefinition
		d.Label = s.raw
		return d
	}
	return definitions[s.code]
}
