package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/tesso57/pubdesk/internal/domain/publication"
	"github.com/tesso57/pubdesk/internal/presentation/tui/presenter"
	"github.com/tesso57/pubdesk/internal/presentation/tui/state"
)

const defaultMarkdownStyle = "dark"

// buildDetailMarkdown lays a publication out as a markdown document.
func buildDetailMarkdown(p publication.Publication) string {
	var b strings.Builder
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	meta := []string{"**" + string(p.Status) + "**"}
	if !p.CreatedAt.IsZero() {
		meta = append(meta, "created "+p.CreatedAt.Local().Format(presenter.DateLayout))
	}
	if !p.UpdatedAt.IsZero() && !p.UpdatedAt.Equal(p.CreatedAt) {
		meta = append(meta, "updated "+p.UpdatedAt.Local().Format(presenter.DateLayout))
	}
	fmt.Fprintf(&b, "%s\n\n---\n\n", strings.Join(meta, " | "))

	body := strings.TrimSpace(p.Content)
	if body == "" {
		body = "_(No content.)_"
	}
	b.WriteString(body)
	b.WriteString("\n")
	return b.String()
}

// renderMarkdown renders md with glamour, falling back to the raw text.
func renderMarkdown(md, style string, width int) string {
	if style == "" {
		style = defaultMarkdownStyle
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(clampMin(width, 20)),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func refreshDetailViewport(s *state.ModelState, deps Deps) {
	width := s.Viewport.Width - s.Viewport.Style.GetHorizontalFrameSize()
	if width <= 0 {
		width = 80
	}
	s.Viewport.SetContent(renderMarkdown(buildDetailMarkdown(s.Detail.Publication), deps.MarkdownStyle, width))
	s.Viewport.GotoTop()
}
