package domain

// DefaultTagColor is applied when a tag is created without an explicit color.
const DefaultTagColor = "#3788d8"

// Tag represents a labeled, colored category attachable to events.
// Color is a hex color code, e.g. "#3788d8".
type Tag struct {
	ID    int64
	Name  string
	Color string
}
