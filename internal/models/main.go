// Package models defines the core data structures for notes.
package models

// Note is a single user note.
type Note struct {
	// ID is the store-assigned identifier. Zero means the note is not persisted yet.
	ID int64 `json:"id"`
	// Title is the note headline.
	Title string `json:"title"`
	// Content holds the note body.
	Content string `json:"content"`
	// Category is one of the fixed Category labels.
	Category Category `json:"category"`
	// Timestamp is the creation or last modification instant in unix milliseconds.
	// It is used only for default ordering.
	Timestamp int64 `json:"timestamp"`
}

// IsNew reports whether the note has not been persisted yet.
func (n Note) IsNew() bool {
	return n.ID == 0
}

// Category defines the set of valid note category labels.
type Category string

const (
	// Work marks work-related notes.
	Work Category = "Work"
	// Study marks study notes.
	Study Category = "Study"
	// Personal is the default category.
	Personal Category = "Personal"
	// Ideas marks loose ideas.
	Ideas Category = "Ideas"
	// ToDo marks task lists.
	ToDo Category = "To-Do"
)

// Categories lists every valid category in display order.
var Categories = []Category{Work, Study, Personal, Ideas, ToDo}

// ParseCategory returns the Category matching s.
// An empty string maps to Personal. Unknown labels report false.
func ParseCategory(s string) (Category, bool) {
	if s == "" {
		return Personal, true
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}
