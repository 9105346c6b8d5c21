package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/stepwise/internal/router"
	"github.com/abhisek/stepwise/internal/screen"
	"github.com/abhisek/stepwise/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel rooted at initial.
func newAppModel(initial screen.Screen) AppModel {
	return AppModel{
		router: router.New(initial),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			// The root screen handles esc itself, e.g. to confirm quitting.
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
	}
	if sp, ok := active.(screen.StatusProvider); ok {
		status = sp.Status()
	}

	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program with initial as the root screen.
func Run(initial screen.Screen) error {
	p := tea.NewProgram(newAppModel(initial))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
