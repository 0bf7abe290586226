package main

import "fmt"

// formatHashrate returns a human-readable hashrate string.
func formatHashrate(h float64) string {
	switch {
	case h >= 1e18:
		return fmt.Sprintf("%.2f EH/s", h/1e18)
	case h >= 1e15:
		return fmt.Sprintf("%.2f PH/s", h/1e15)
	case h >= 1e12:
		return fmt.Sprintf("%.2f TH/s", h/1e12)
	case h >= 1e9:
		return fmt.Sprintf("%.2f GH/s", h/1e9)
	case h >= 1e6:
		return fmt.Sprintf("%.2f MH/s", h/1e6)
	case h >= 1e3:
		return fmt.Sprintf("%.2f KH/s", h/1e3)
	default:
		return fmt.Sprintf("%.0f H/s", h)
	}
}
