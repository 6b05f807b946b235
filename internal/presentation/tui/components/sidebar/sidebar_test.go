package sidebar

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	got := Render(Props{
		Title:   "pubdesk",
		Entries: []Entry{{Label: "Public"}, {Label: "Dashboard", Active: true}},
		Info:    []string{"Signed in", "2 selected"},
		Width:   30,
		Height:  10,
	})

	for _, want := range []string{"pubdesk", "  Public", "> Dashboard", "Signed in", "2 selected"} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q in %q", want, got)
		}
	}
}
