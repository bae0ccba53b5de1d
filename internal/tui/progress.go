package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

type progressMsg struct {
	processed int
	skipped   int
}

type progressDoneMsg struct{}

// loadModel renders a progress bar while a load streams records.
type loadModel struct {
	bar       progress.Model
	total     int
	processed int
	skipped   int
	done      bool
}

func (m loadModel) Init() tea.Cmd {
	return nil
}

func (m loadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.processed = msg.processed
		m.skipped = msg.skipped
		if m.total > 0 {
			return m, m.bar.SetPercent(float64(m.processed) / float64(m.total))
		}
		return m, nil
	case progressDoneMsg:
		m.done = true
		return m, tea.Quit
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loadModel) View() string {
	var b strings.Builder
	if m.total > 0 {
		b.WriteString(m.bar.View())
		b.WriteString("\n")
	}
	line := fmt.Sprintf("%s %d records loaded, %d skipped", SymbolBullet, m.processed, m.skipped)
	if m.done {
		line = SuccessStyle.Render(SymbolCheck) + line[len(SymbolBullet):]
	}
	b.WriteString(MutedStyle.Render(line))
	b.WriteString("\n")
	return b.String()
}

// LoadDisplay shows live load progress on a terminal and stays silent
// otherwise. total may be zero when the source size is unknown.
type LoadDisplay struct {
	program *tea.Program
	total   int
}

// NewLoadDisplay starts the progress display when running interactively.
func NewLoadDisplay(total int) *LoadDisplay {
	d := &LoadDisplay{total: total}
	if !IsInteractive() {
		return d
	}

	m := loadModel{
		bar:   progress.New(progress.WithDefaultGradient()),
		total: total,
	}
	d.program = tea.NewProgram(m, tea.WithOutput(os.Stderr))
	go func() {
		_, _ = d.program.Run()
	}()
	return d
}

// Update pushes running totals into the display.
func (d *LoadDisplay) Update(processed, skipped int) {
	if d.program != nil {
		d.program.Send(progressMsg{processed: processed, skipped: skipped})
	}
}

// Finish stops the display and waits for the final frame.
func (d *LoadDisplay) Finish() {
	if d.program != nil {
		d.program.Send(progressDoneMsg{})
		d.program.Wait()
	}
}
