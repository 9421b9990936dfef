package model

import "time"

// Shared defaults used by the CLI, the engine and the ticker.
const (
	DefaultAutoAdvance        = 30 * time.Second
	DefaultIdleTimeout        = 5 * time.Second
	DefaultTransition         = 500 * time.Millisecond
	DefaultFrameRate          = 30
	DefaultTickerSwapDelay    = 150 * time.Millisecond
	DefaultTickerFade         = 120 * time.Millisecond
	DefaultSwipeThreshold     = 8
	DefaultProviderTimeout    = 10 * time.Second
	DefaultSkin               = "default"
	DefaultAccent             = "#9ca3af"
	DefaultBorder             = "#4b5563"
	DefaultPlaceholderValue   = "--"
	DefaultPlaceholderUnit    = "NO DATA"
	DefaultSelectionFirst     = 0.40
	DefaultSelectionSecond    = 0.25
	DefaultSelectionThird     = 0.15
	DefaultSelectionRemainder = 0.20
)

// DefaultBlankValues are stat values the ticker treats as absent.
var DefaultBlankValues = []string{"", "N/A", "n/a", "NaN"}
