// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 OpenShunt contributors

package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/openshunt/openshunt/pkg/vedirect"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Live VE.Direct telemetry dashboard",
	Long: `Full-screen dashboard showing the live Text telemetry of a VE.Direct
device: the per-second readings, the most recent history block, and frame
counters.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("25")).
			Padding(0, 1)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

// Messages
type textFrameMsg struct {
	frame *vedirect.TextFrame
}
type connLostMsg struct {
	err error
}
type tickMsg time.Time

type tuiModel struct {
	connInfo  string
	telemetry *vedirect.TextFrame
	history   *vedirect.TextFrame
	frames    int
	lastSeen  time.Time
	connErr   error

	fieldTable table.Model
	width      int
	height     int
	quitting   bool
}

func newTUIModel(connInfo string) tuiModel {
	columns := []table.Column{
		{Title: "Field", Width: 6},
		{Title: "Value", Width: 12},
		{Title: "Meaning", Width: 34},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(16),
		table.WithFocused(false),
	)
	return tuiModel{connInfo: connInfo, fieldTable: t, width: 80, height: 24}
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(tuiTick(), tea.EnterAltScreen)
}

func tuiTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		return m, tuiTick()

	case connLostMsg:
		m.connErr = msg.err
		return m, tea.Quit

	case textFrameMsg:
		m.frames++
		m.lastSeen = time.Now()
		if msg.frame.IsHistory() {
			m.history = msg.frame
		} else {
			m.telemetry = msg.frame
			m.fieldTable.SetRows(frameRows(msg.frame))
		}
	}

	return m, nil
}

func frameRows(frame *vedirect.TextFrame) []table.Row {
	rows := make([]table.Row, 0, len(frame.Fields))
	for _, f := range frame.Fields {
		rows = append(rows, table.Row{f.Label, f.Value, vedirect.DescribeField(f.Label)})
	}
	return rows
}

func (m tuiModel) View() string {
	if m.quitting {
		return ""
	}

	s := titleStyle.Render("OpenShunt - VE.Direct monitor") + "\n"
	s += statusStyle.Render(fmt.Sprintf("%s   frames: %d", m.connInfo, m.frames)) + "\n\n"

	if m.telemetry == nil {
		s += "Waiting for the first telemetry frame...\n"
		return s
	}

	s += sectionStyle.Render("Telemetry") + "\n"
	s += m.fieldTable.View() + "\n"

	if m.history != nil {
		s += "\n" + sectionStyle.Render("History") + "\n"
		line := ""
		for i, f := range m.history.Fields {
			line += fmt.Sprintf("%s=%s  ", f.Label, f.Value)
			if (i+1)%6 == 0 {
				line += "\n"
			}
		}
		s += line + "\n"
	}

	if !m.lastSeen.IsZero() {
		s += "\n" + statusStyle.Render("last frame: "+m.lastSeen.Format("15:04:05")) + "\n"
	}
	s += statusStyle.Render("q to quit") + "\n"
	return s
}

func runTUI(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := openConnection(0)
	if err != nil {
		return err
	}
	defer conn.Close()

	p := tea.NewProgram(newTUIModel(connInfo))

	// Reader goroutine feeds decoded frames into the program.
	go func() {
		reader := vedirect.NewTextReader()
		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			for i := 0; i < n; i++ {
				if frame := reader.Feed(buf[i]); frame != nil {
					p.Send(textFrameMsg{frame: frame})
				}
			}
			if err != nil {
				p.Send(connLostMsg{err: err})
				return
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
