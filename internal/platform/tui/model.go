package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/flappy-evo/internal/core"
	"github.com/vovakirdan/flappy-evo/internal/games/flappy"
)

// Options configures the viewer.
type Options struct {
	Title  string // Shown in the status line
	FPS    int    // Redraw rate
	Width  int    // Initial terminal size, replaced on the first resize
	Height int

	// ScreenshotDir receives ctrl+s captures. Empty = ~/.flappyevo/screenshots.
	ScreenshotDir string
}

// sourceDone carries the source's return value.
type sourceDone struct {
	err error
}

// Model is the Bubble Tea model that displays snapshots published by a
// running Source. Quitting cancels the source.
type Model struct {
	opts   Options
	src    Source
	ctx    context.Context
	cancel context.CancelFunc

	snaps  flappy.ChannelSink
	done   chan sourceDone
	start  *sync.Once
	screen *core.Screen
	keys   KeyMap
	help   help.Model

	last     flappy.Snapshot
	have     bool
	frozen   bool
	finished bool
	err      error
	status   string
	quitting bool
}

// NewModel creates a viewer for src. The source starts with Init and stops
// when parent is canceled or the viewer quits.
func NewModel(parent context.Context, src Source, opts Options) Model {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}

	ctx, cancel := context.WithCancel(parent)
	return Model{
		opts:   opts,
		src:    src,
		ctx:    ctx,
		cancel: cancel,
		snaps:  make(flappy.ChannelSink, 64),
		done:   make(chan sourceDone, 1),
		start:  &sync.Once{},
		screen: core.NewScreen(opts.Width, fieldHeight(opts.Height)),
		keys:   DefaultKeyMap(),
		help:   help.New(),
	}
}

// fieldHeight leaves one row for the status line.
func fieldHeight(h int) int {
	return max(h-1, 1)
}

// Init starts the source and the redraw loop.
func (m Model) Init() tea.Cmd {
	m.startSource()
	return tickCmd(m.opts.FPS)
}

// startSource launches the source once per model.
func (m Model) startSource() {
	m.start.Do(func() {
		go func() {
			m.done <- sourceDone{err: m.src(m.ctx, m.snaps)}
		}()
	})
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.opts.Width = msg.Width
		m.opts.Height = msg.Height
		m.screen.Resize(msg.Width, fieldHeight(msg.Height))
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Freeze):
		m.frozen = !m.frozen
	case key.Matches(msg, m.keys.Screenshot):
		m.status = m.saveScreenshot()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// handleTick drains pending snapshots, keeping the newest, and checks
// whether the source has finished.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	for drained := false; !drained; {
		select {
		case snap := <-m.snaps:
			if !m.frozen {
				m.last = snap
				m.have = true
			}
		default:
			drained = true
		}
	}

	if !m.finished {
		select {
		case d := <-m.done:
			m.finished = true
			if d.err != nil && !errors.Is(d.err, context.Canceled) {
				m.err = d.err
			}
		default:
		}
	}

	return m, tickCmd(m.opts.FPS)
}

// saveScreenshot writes the current field as plain text and returns a
// status message.
func (m *Model) saveScreenshot() string {
	dir := m.opts.ScreenshotDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "screenshot failed: " + err.Error()
		}
		dir = filepath.Join(home, ".flappyevo", "screenshots")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "screenshot failed: " + err.Error()
	}

	m.draw()
	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("gen%03d_tick%d_%s.txt", m.last.Generation, m.last.Tick, timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		return "screenshot failed: " + err.Error()
	}
	return "saved " + path
}

func (m *Model) draw() {
	m.screen.Clear()
	if m.have {
		flappy.Render(m.screen, m.last)
		return
	}
	m.screen.DrawText(1, 0, "waiting for the first frame...", core.ColorGray)
}

// statusLine describes the viewer state below the field.
func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("error: " + m.err.Error())
	case m.frozen:
		return frozenStyle.Render(" FROZEN ") + " " + m.help.View(m.keys)
	case m.status != "":
		return statusStyle.Render(m.status)
	case m.finished:
		return statusStyle.Render(m.opts.Title+" finished") + "  " + m.help.View(m.keys)
	default:
		return statusStyle.Render(m.opts.Title) + "  " + m.help.View(m.keys)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	m.draw()
	return RenderScreen(m.screen) + "\n" + m.statusLine()
}

// Err returns the error the source stopped with, if any.
func (m Model) Err() error {
	return m.err
}

// Run shows src in the terminal until the user quits, the source fails or
// ctx is canceled. A source that finishes normally keeps its last frame on
// screen until the user quits.
func Run(ctx context.Context, src Source, opts Options) error {
	model := NewModel(ctx, src, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	model.cancel()

	// Wait for the source so callers can read what it produced. A program
	// that failed before Init still runs the source against the canceled
	// context so the wait below ends.
	model.startSource()
	srcErr := model.err
	if fm, ok := final.(Model); ok && fm.finished {
		srcErr = fm.err
	} else if d := <-model.done; d.err != nil && !errors.Is(d.err, context.Canceled) {
		srcErr = d.err
	}

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return srcErr
}
