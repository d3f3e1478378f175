package view

import "github.com/yaron8/netwatch/telemetrics"

// Display classes. Renderers map them to colours.
const (
	ClassOnline  = "status-online"
	ClassWarning = "status-warning"
	ClassOffline = "status-offline"
)

// StatusDisplay is the label and class shown for a validator status.
type StatusDisplay struct {
	Label string `json:"label"`
	Class string `json:"class"`
}

// Status maps a validator status to its display. Unrecognized values show as Unknown.
func Status(status string) StatusDisplay {
	switch status {
	case telemetrics.StatusOnline:
		return StatusDisplay{Label: "Online", Class: ClassOnline}
	case telemetrics.StatusWarning:
		return StatusDisplay{Label: "Warning", Class: ClassWarning}
	case telemetrics.StatusOffline:
		return StatusDisplay{Label: "Offline", Class: ClassOffline}
	case telemetrics.StatusSlashed:
		// slashed shares the offline colour
		return StatusDisplay{Label: "Slashed 🔪", Class: ClassOffline}
	default:
		return StatusDisplay{Label: "Unknown", Class: ClassWarning}
	}
}
