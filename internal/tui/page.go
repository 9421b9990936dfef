package tui

import tea "github.com/charmbracelet/bubbletea"

// Page is one screen of the program: the loading screen or the dashboard.
// Pages receive their size with View instead of tracking it.
type Page interface {
	ID() string
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Cmd, *PageNav)
	View(width, height int) string
}

// PageNav asks the App to show another page.
type PageNav struct {
	PageID string
	Params any
}

// ParamReceiver is implemented by pages that take input on arrival, such as
// the dashboard receiving the gathered slides.
type ParamReceiver interface {
	Receive(params any)
}
