package ui

import (
	"fmt"

	"github.com/groblegark/kleads/internal/model"
)

// ANSI256 color codes for lead statuses and chrome.
const (
	colorNew       = 74  // blue
	colorContacted = 179 // yellow
	colorQualified = 71  // green
	colorLost      = 167 // red
	colorWon       = 140 // purple
	colorAccent    = 74  // blue
	colorMuted     = 245 // medium gray
)

var noColor bool

// RenderStatus returns the status name in its conventional color.
func RenderStatus(status model.Status) string {
	s := string(status)
	if noColor {
		return s
	}
	var code int
	switch status {
	case model.StatusNew:
		code = colorNew
	case model.StatusContacted:
		code = colorContacted
	case model.StatusQualified:
		code = colorQualified
	case model.StatusLost:
		code = colorLost
	case model.StatusWon:
		code = colorWon
	default:
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorMuted, s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
