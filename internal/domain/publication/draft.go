package publication

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	TitleMinLength   = 3
	TitleMaxLength   = 100
	ContentMinLength = 10
	ContentMaxLength = 500
)

// Draft is the payload of a create or full update.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  Status `json:"status"`
}

// DraftOf returns the editable fields of an existing publication.
func DraftOf(p Publication) Draft {
	return Draft{Title: p.Title, Content: p.Content, Status: p.Status}
}

// Normalize trims surrounding whitespace.
func (d Draft) Normalize() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Content = strings.TrimSpace(d.Content)
	return d
}

// Patch converts the draft to a patch touching every field.
func (d Draft) Patch() Patch {
	return Patch{Title: &d.Title, Content: &d.Content, Status: &d.Status}
}

// Validate checks the draft. Lengths are measured on the trimmed text.
func (d Draft) Validate() error {
	d = d.Normalize()
	verr := ValidationError{}

	switch n := utf8.RuneCountInString(d.Title); {
	case n == 0:
		verr["title"] = "Title is required"
	case n < TitleMinLength:
		verr["title"] = "Title must be at least 3 characters"
	case n > TitleMaxLength:
		verr["title"] = "Title must be at most 100 characters"
	}

	switch n := utf8.RuneCountInString(d.Content); {
	case n == 0:
		verr["content"] = "Content is required"
	case n < ContentMinLength:
		verr["content"] = "Content must be at least 10 characters"
	case n > ContentMaxLength:
		verr["content"] = "Content must be at most 500 characters"
	}

	if !d.Status.Valid() {
		verr["status"] = "Status is required"
	}

	if len(verr) == 0 {
		return nil
	}
	return verr
}

// ValidationError maps field names to messages.
type ValidationError map[string]string

func (v ValidationError) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, v[field])
	}
	return strings.Join(msgs, "; ")
}
