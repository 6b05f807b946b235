package modal

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		props    Props
		wantBody []string
		wantVis  bool
	}{
		{
			name:    "Hidden",
			props:   Props{Visible: false, Body: "ignored"},
			wantVis: false,
		},
		{
			name:     "Help Modal",
			props:    Props{Visible: true, Kind: Help, Body: "HELP INFO", Width: 100, Height: 50},
			wantBody: []string{"HELP INFO"},
			wantVis:  true,
		},
		{
			name:     "Confirm Modal",
			props:    Props{Visible: true, Kind: Confirm, Title: "Delete publication", Body: "(y/n)", Width: 100, Height: 50},
			wantBody: []string{"Delete publication", "(y/n)"},
			wantVis:  true,
		},
		{
			name:     "Form Modal on a narrow terminal",
			props:    Props{Visible: true, Kind: Form, Title: "New publication", Body: "Title", Width: 20, Height: 10},
			wantBody: []string{"New publication", "Title"},
			wantVis:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.props)
			if !tt.wantVis {
				if got != "" {
					t.Errorf("Render() = %q, want empty", got)
				}
				return
			}
			for _, want := range tt.wantBody {
				if !strings.Contains(got, want) {
					t.Errorf("Render() = %q, want %q", got, want)
				}
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if clamp(5, 10, 20) != 10 || clamp(25, 10, 20) != 20 || clamp(15, 10, 20) != 15 {
		t.Fatal("clamp out of bounds")
	}
}
