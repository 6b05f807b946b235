// Package presenter builds view models for the TUI.
package presenter

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/tesso57/pubdesk/internal/domain/publication"
)

// DateLayout is used wherever a publication timestamp is shown.
const DateLayout = "2006-01-02 15:04"

// Item is a view model for list items.
type Item struct {
	Publication publication.Publication
	Selected    bool
	Selectable  bool
}

// FilterValue implements list.Item.
func (i *Item) FilterValue() string { return i.Publication.Title }

// Title returns the publication title.
func (i *Item) Title() string { return i.Publication.Title }

// IsSelected reports whether the item is part of the bulk selection.
func (i *Item) IsSelected() bool { return i.Selected }

// ShowCheckbox reports whether the item renders a selection box.
func (i *Item) ShowCheckbox() bool { return i.Selectable }

// IsPublished reports whether the publication is public.
func (i *Item) IsPublished() bool { return i.Publication.Status == publication.StatusPublished }

// Description returns the status and last update for list display.
func (i *Item) Description() string {
	if i.Publication.UpdatedAt.IsZero() {
		return string(i.Publication.Status)
	}
	return fmt.Sprintf("%s - %s", i.Publication.Status, i.Publication.UpdatedAt.Local().Format(DateLayout))
}

// BuildItems builds list items for publications. A nil selection hides the checkboxes.
func BuildItems(pubs []publication.Publication, selection *publication.Selection) []list.Item {
	items := make([]list.Item, len(pubs))
	for i, p := range pubs {
		items[i] = &Item{
			Publication: p,
			Selected:    selection != nil && selection.Has(p.ID),
			Selectable:  selection != nil,
		}
	}
	return items
}

// ApplyList replaces the list items, keeping the cursor in range.
func ApplyList(model *list.Model, pubs []publication.Publication, selection *publication.Selection) {
	idx := model.Index()
	model.SetItems(BuildItems(pubs, selection))
	switch {
	case len(pubs) == 0:
		model.ResetSelected()
	case idx >= len(pubs):
		model.Select(len(pubs) - 1)
	}
}
