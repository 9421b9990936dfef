package tui

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"
)

// App is the top-level Bubble Tea model. It forwards every message to the
// active page and switches pages when one asks for it.
type App struct {
	pages  []Page
	index  map[string]int
	active int
	size   tea.WindowSizeMsg
}

// NewApp creates an App showing first, with rest reachable by page ID.
func NewApp(first Page, rest ...Page) *App {
	pages := append([]Page{first}, rest...)
	index := make(map[string]int, len(pages))
	for i, p := range pages {
		index[p.ID()] = i
	}
	return &App{pages: pages, index: index}
}

// ActivePage returns the ID of the page currently shown.
func (a *App) ActivePage() string { return a.pages[a.active].ID() }

func (a *App) Init() tea.Cmd { return a.pages[a.active].Init() }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		a.size = size
	}

	cmd, nav := a.pages[a.active].Update(msg)
	if nav == nil {
		return a, cmd
	}
	return a, tea.Batch(cmd, a.switchTo(*nav))
}

// switchTo activates the requested page, hands it its params and replays
// the last known window size so it can lay itself out at once.
func (a *App) switchTo(nav PageNav) tea.Cmd {
	i, ok := a.index[nav.PageID]
	if !ok {
		log.Printf("tui: navigation to unknown page %q ignored", nav.PageID)
		return nil
	}
	a.active = i
	next := a.pages[i]
	if r, ok := next.(ParamReceiver); ok {
		r.Receive(nav.Params)
	}

	cmds := []tea.Cmd{next.Init()}
	if a.size.Width > 0 && a.size.Height > 0 {
		size := a.size
		cmds = append(cmds, func() tea.Msg { return size })
	}
	return tea.Batch(cmds...)
}

func (a *App) View() string {
	return a.pages[a.active].View(a.size.Width, a.size.Height)
}
