package tui

// UI Text Constants
const (
	// Footer
	TextFooterInput   = "Enter to submit | Tab for feed suggestions | Esc to quit"
	TextFooterPicker  = "Press 1-9 to pick a suggestion | Esc to close | Ctrl+C to quit"
	TextFooterRunning = "The daemon keeps running if you quit | Ctrl+C to quit"
	TextFooterDone    = "Press 'n' for another run | q to quit"
)
