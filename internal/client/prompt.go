package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/NoteNest/internal/models"
)

// Prompter asks the user for values line by line.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Line prints label and returns the next input line, trimmed. ok is false at
// end of input.
func (p *Prompter) Line(label string) (line string, ok bool) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

// PromptForNote asks for every field of a new note.
func (p *Prompter) PromptForNote() NoteInput {
	title, _ := p.Line("Enter title: ")
	content, _ := p.Line("Enter content: ")
	category, _ := p.Line(fmt.Sprintf("Enter category (%s) [%s]: ", categoryList(), models.Personal))
	return NoteInput{Title: title, Content: content, Category: category}
}

// PromptEditNote asks for new values, keeping the current one for every
// empty answer.
func (p *Prompter) PromptEditNote(cur models.Note) NoteInput {
	in := NoteInput{Title: cur.Title, Content: cur.Content, Category: string(cur.Category)}
	if v, _ := p.Line(fmt.Sprintf("Enter new title [%s]: ", cur.Title)); v != "" {
		in.Title = v
	}
	if v, _ := p.Line("Enter new content (leave empty to keep): "); v != "" {
		in.Content = v
	}
	if v, _ := p.Line(fmt.Sprintf("Enter new category [%s]: ", cur.Category)); v != "" {
		in.Category = v
	}
	return in
}

func categoryList() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, "/")
}
