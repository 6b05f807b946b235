package mainview

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	got := Render(Props{
		Width:  100,
		Height: 50,
		Header: "HEADER",
		Body:   "BODY",
		Status: "No more publications",
	})

	for _, want := range []string{"HEADER", "BODY", "No more publications"} {
		if !strings.Contains(got, want) {
			t.Errorf("Missing %q", want)
		}
	}
	if strings.Index(got, "HEADER") > strings.Index(got, "BODY") || strings.Index(got, "BODY") > strings.Index(got, "No more") {
		t.Error("parts rendered out of order")
	}
}

func TestRender_SkipsEmptyParts(t *testing.T) {
	got := Render(Props{Width: 20, Body: "BODY"})
	if strings.HasPrefix(strings.TrimLeft(got, " "), "\n") {
		t.Errorf("empty header should not leave a blank line: %q", got)
	}
}
