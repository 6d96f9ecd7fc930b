package notestore

import (
	"context"

	"github.com/atinyakov/NoteNest/internal/models"
)

// followNote narrows a stream of full collections down to one note. The first
// state is always sent (nil when absent); after that only changes are.
func followNote(ctx context.Context, all <-chan []models.Note, id int64) <-chan *models.Note {
	out := make(chan *models.Note)
	go func() {
		defer close(out)

		var (
			last *models.Note
			sent bool
		)
		for {
			var notes []models.Note
			select {
			case <-ctx.Done():
				return
			case n, ok := <-all:
				if !ok {
					return
				}
				notes = n
			}

			cur := findNote(notes, id)
			if sent && sameNote(last, cur) {
				continue
			}
			select {
			case out <- cur:
				last, sent = cur, true
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func findNote(notes []models.Note, id int64) *models.Note {
	for i := range notes {
		if notes[i].ID == id {
			n := notes[i]
			return &n
		}
	}
	return nil
}

func sameNote(a, b *models.Note) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
