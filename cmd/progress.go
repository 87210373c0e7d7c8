package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type Phase int

const (
	phaseLoadLeft Phase = iota
	phaseLoadRight
	phaseCompare
	phaseOutput
	phaseCount // number of phases
)

func (p Phase) String() string {
	switch p {
	case phaseLoadLeft:
		return "Loading left dataset"
	case phaseLoadRight:
		return "Loading right dataset"
	case phaseCompare:
		return "Comparing"
	case phaseOutput:
		return "Writing output"
	default:
		return "Unknown"
	}
}

var (
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Margin(0, 2)

	stageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Margin(0, 2)

	progressInfoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#888888")).
				Margin(0, 2)
)

type phaseStartMsg struct {
	phase Phase
}

type phaseDoneMsg struct {
	phase Phase
	count int
}

type trackerQuitMsg struct{}

type phaseModel struct {
	currentSpinner  spinner.Model
	overallProgress progress.Model
	current         Phase
	started         bool
	done            [phaseCount]bool
	counts          [phaseCount]int
	startTime       time.Time
	finished        bool
}

func newPhaseModel() phaseModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	overallProg := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(60),
	)

	return phaseModel{
		currentSpinner:  s,
		overallProgress: overallProg,
		startTime:       time.Now(),
	}
}

func (m phaseModel) Init() tea.Cmd {
	return m.currentSpinner.Tick
}

func (m phaseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case phaseStartMsg:
		m.current = msg.phase
		m.started = true
		return m, nil

	case phaseDoneMsg:
		m.done[msg.phase] = true
		m.counts[msg.phase] = msg.count
		return m, nil

	case trackerQuitMsg:
		m.finished = true
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.currentSpinner, cmd = m.currentSpinner.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

func (m phaseModel) View() string {
	if m.finished {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")

	completed := 0
	for phase := Phase(0); phase < phaseCount; phase++ {
		switch {
		case m.done[phase]:
			completed++
			b.WriteString(stageStyle.Render(fmt.Sprintf("✓ %s", phase)) + "\n")
		case m.started && phase == m.current:
			b.WriteString(stageStyle.Render(fmt.Sprintf("%s %s...", m.currentSpinner.View(), phase)) + "\n")
		default:
			b.WriteString(progressInfoStyle.Render(fmt.Sprintf("· %s", phase)) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString("  " + m.overallProgress.ViewAs(float64(completed)/float64(phaseCount)) + "\n")
	b.WriteString(progressInfoStyle.Render(fmt.Sprintf("Elapsed: %s", time.Since(m.startTime).Round(time.Second))) + "\n")
	b.WriteString(helpStyle.Render("Press q or ctrl+c to abort") + "\n")

	return b.String()
}

// phaseTracker drives the terminal progress display. It stays inactive in
// debug mode and for JSON output, where TUI frames would pollute the stream.
type phaseTracker struct {
	program *tea.Program
	done    chan struct{}
}

func newPhaseTracker(config *Config) *phaseTracker {
	if config.Debug || config.Output.Format == "json" {
		return &phaseTracker{}
	}

	t := &phaseTracker{
		program: tea.NewProgram(newPhaseModel()),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		// A non-TTY stdout makes Run fail; the comparison proceeds without
		// a progress display in that case
		_, _ = t.program.Run()
	}()
	return t
}

func (t *phaseTracker) Start(phase Phase) {
	if t.program == nil {
		return
	}
	t.program.Send(phaseStartMsg{phase: phase})
}

func (t *phaseTracker) Done(phase Phase, count int) {
	if t.program == nil {
		return
	}
	t.program.Send(phaseDoneMsg{phase: phase, count: count})
}

func (t *phaseTracker) Finish() {
	if t.program == nil {
		return
	}
	t.program.Send(trackerQuitMsg{})
	<-t.done
}
