package listview

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/tesso57/pubdesk/internal/presentation/tui/metrics"
	"github.com/tesso57/pubdesk/internal/presentation/tui/textutil"
)

// rowStyles pads titles on the right and colors the cursor row.
func rowStyles(accent lipgloss.Color) list.DefaultItemStyles {
	styles := list.NewDefaultItemStyles()
	styles.NormalTitle = styles.NormalTitle.PaddingRight(metrics.ItemRightPadding)
	styles.SelectedTitle = styles.SelectedTitle.
		PaddingRight(metrics.ItemRightPadding).
		Foreground(accent).
		BorderForeground(accent)
	return styles
}

// rowText is "[x] ● Title"; the checkbox only appears in selectable lists.
func rowText(i PublicationItem) string {
	text := statusMark(i.IsPublished()) + " " + textutil.SingleLine(i.Title())
	if i.ShowCheckbox() {
		text = checkbox(i.IsSelected()) + " " + text
	}
	return text
}

func fitRow(m list.Model, style lipgloss.Style, text string) string {
	return textutil.Truncate(text, m.Width()-style.GetHorizontalFrameSize()-metrics.ItemSafetyPadding)
}

func checkbox(selected bool) string {
	if selected {
		return "[x]"
	}
	return "[ ]"
}

func statusMark(published bool) string {
	if published {
		return "●"
	}
	return "○"
}
