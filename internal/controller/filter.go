package controller

import (
	"strings"

	"github.com/atinyakov/NoteNest/internal/models"
)

// FilterNotes returns the notes whose title or content contains query,
// ignoring case, in their original order. A blank query returns notes as is.
func FilterNotes(notes []models.Note, query string) []models.Note {
	if strings.TrimSpace(query) == "" {
		return notes
	}
	q := strings.ToLower(query)
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
			out = append(out, n)
		}
	}
	return out
}
