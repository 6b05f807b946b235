// Package metrics centralizes layout constants for the TUI.
package metrics

const (
	HeaderLines     = 2
	ListStatusLines = 1
	SidebarMinWidth = 18
	SidebarMaxWidth = 28
	SidebarBorder   = 1

	ItemRightPadding  = 1
	ItemSafetyPadding = 1

	SkeletonRows = 5
)
