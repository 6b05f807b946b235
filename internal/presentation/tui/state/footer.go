package state

import "strings"

// FooterText returns the footer content: the status message, if any, above the help text.
func FooterText(statusMessage, helpText string) string {
	status := strings.TrimSpace(statusMessage)
	if status == "" {
		return helpText
	}
	if helpText == "" {
		return status
	}
	return status + "\n" + helpText
}
