package category

import "errors"

// MaxCategories is the largest number of categories a session may hold.
const MaxCategories = 5

// Palette holds the display colours handed out by creation order.
var Palette = []string{
	"#FF3B30",
	"#34C759",
	"#007AFF",
	"#FF9500",
	"#AF52DE",
}

// Category is a user-defined classification label with its display colour.
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
}

var (
	ErrLimitReached   = errors.New("category limit reached")
	ErrNotFound       = errors.New("category not found")
	ErrDuplicateLabel = errors.New("category label already in use")
	ErrDuplicateID    = errors.New("category id already in use")
	ErrEmptyLabel     = errors.New("category label is required")
	ErrNoSelection    = errors.New("no category selected")
)

// ColorFor returns the palette colour for the category created when the
// list already holds n entries. Indexes past the palette wrap around.
func ColorFor(n int) string {
	if n < 0 {
		n = 0
	}
	return Palette[n%len(Palette)]
}

// Labels returns the labels of cats in order.
func Labels(cats []Category) []string {
	labels := make([]string, len(cats))
	for i, c := range cats {
		labels[i] = c.Label
	}
	return labels
}

// IndexOf returns the position of the category with the given id, or -1.
func IndexOf(cats []Category, id string) int {
	for i, c := range cats {
		if c.ID == id {
			return i
		}
	}
	return -1
}
