// Package tui runs interactive terminal pickers over a suggest.Resolver.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/erazemk/healthpilot/internal/suggest"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
)

type stage int

const (
	searching stage = iota
	askingQuantity
	finished
)

// Options configures a Picker.
type Options[T any] struct {
	Title       string
	Placeholder string
	// Label renders one suggestion.
	Label func(T) string
	// AskQuantity adds a quantity prompt after a suggestion is chosen.
	AskQuantity     bool
	DefaultQuantity float64
	QuantityUnit    string
	// Describe turns a lookup error into a status line.
	Describe func(error) string
	Suggest  suggest.Options[T]
}

// Result is what the user picked.
type Result[T any] struct {
	Item      T
	Quantity  float64
	Cancelled bool
}

// refreshMsg tells the model the resolver changed state.
type refreshMsg struct{}

// Picker is a Bubble Tea model: a search box whose edits feed the resolver,
// a suggestion list and an optional quantity prompt.
type Picker[T any] struct {
	opts     Options[T]
	resolver *suggest.Resolver[T]
	wake     chan struct{}
	stop     sync.Once

	input    textinput.Model
	quantity textinput.Model
	spinner  spinner.Model

	stage  stage
	snap   suggest.Snapshot[T]
	cursor int
	status string
	result Result[T]
}

// NewPicker creates a picker around lookup. Close must be called when the
// picker is no longer used.
func NewPicker[T any](lookup suggest.LookupFunc[T], opts Options[T]) *Picker[T] {
	if opts.Label == nil {
		opts.Label = func(v T) string { return fmt.Sprint(v) }
	}
	if opts.Describe == nil {
		opts.Describe = func(err error) string { return err.Error() }
	}

	p := &Picker[T]{opts: opts, wake: make(chan struct{}, 1)}

	so := opts.Suggest
	onChange := so.OnChange
	so.OnChange = func(s suggest.Snapshot[T]) {
		if onChange != nil {
			onChange(s)
		}
		select {
		case p.wake <- struct{}{}:
		default:
		}
	}
	p.resolver = suggest.New(lookup, so)

	p.input = textinput.New()
	p.input.Placeholder = opts.Placeholder
	p.input.Prompt = "› "
	p.input.Focus()

	p.quantity = textinput.New()
	p.quantity.Prompt = "Quantity: "
	p.quantity.CharLimit = 10

	p.spinner = spinner.New()
	p.spinner.Spinner = spinner.Dot
	return p
}

// Init implements tea.Model.
func (p *Picker[T]) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, p.spinner.Tick, p.listen())
}

// listen waits for the next resolver change.
func (p *Picker[T]) listen() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-p.wake; !ok {
			return nil
		}
		return refreshMsg{}
	}
}

// Update implements tea.Model.
func (p *Picker[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		p.refresh()
		return p, p.listen()

	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return p.cancel()
		}
		if p.stage == askingQuantity {
			return p.updateQuantity(msg)
		}
		return p.updateSearch(msg)
	}
	return p, nil
}

func (p *Picker[T]) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return p.cancel()
	case tea.KeyUp:
		if p.cursor > 0 {
			p.cursor--
		}
		return p, nil
	case tea.KeyDown:
		if p.cursor < len(p.snap.Suggestions)-1 {
			p.cursor++
		}
		return p, nil
	case tea.KeyEnter:
		return p.choose()
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.status = ""
		p.resolver.Update(p.input.Value())
		p.refresh()
	}
	return p, cmd
}

func (p *Picker[T]) choose() (tea.Model, tea.Cmd) {
	item, err := p.resolver.Select(p.cursor)
	if err != nil {
		switch {
		case p.snap.State == suggest.Resolved && len(p.snap.Suggestions) == 0:
			p.status = "No results."
		case errors.Is(err, suggest.ErrStale):
			p.status = "Wait for the results of the current search."
		default:
			p.status = err.Error()
		}
		return p, nil
	}

	p.result.Item = item
	if !p.opts.AskQuantity {
		return p.finish()
	}

	p.stage = askingQuantity
	p.status = ""
	p.input.Blur()
	p.quantity.SetValue(strconv.FormatFloat(p.opts.DefaultQuantity, 'f', -1, 64))
	p.quantity.CursorEnd()
	return p, p.quantity.Focus()
}

func (p *Picker[T]) updateQuantity(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		p.stage = searching
		p.status = ""
		p.quantity.Blur()
		return p, p.input.Focus()
	case tea.KeyEnter:
		q, err := strconv.ParseFloat(strings.TrimSpace(p.quantity.Value()), 64)
		if err != nil || !(q > 0) || math.IsInf(q, 0) {
			p.status = "Quantity must be a positive number."
			return p, nil
		}
		p.result.Quantity = q
		return p.finish()
	}

	var cmd tea.Cmd
	p.quantity, cmd = p.quantity.Update(msg)
	return p, cmd
}

func (p *Picker[T]) finish() (tea.Model, tea.Cmd) {
	p.stage = finished
	return p, tea.Quit
}

func (p *Picker[T]) cancel() (tea.Model, tea.Cmd) {
	p.result = Result[T]{Cancelled: true}
	p.stage = finished
	return p, tea.Quit
}

// refresh pulls the resolver's current state. The wake channel only signals
// that something changed, so a dropped signal never loses a snapshot.
func (p *Picker[T]) refresh() {
	snap := p.resolver.Snapshot()
	if snap.Seq != p.snap.Seq || snap.State != p.snap.State {
		p.cursor = 0
	}
	p.snap = snap
	if snap.State == suggest.Failed && snap.Err != nil {
		p.status = p.opts.Describe(snap.Err)
	}
}

// View implements tea.Model.
func (p *Picker[T]) View() string {
	if p.stage == finished {
		return ""
	}

	var b strings.Builder
	if p.opts.Title != "" {
		b.WriteString(titleStyle.Render(p.opts.Title) + "\n\n")
	}

	if p.stage == askingQuantity {
		b.WriteString(selectedStyle.Render(p.opts.Label(p.result.Item)) + "\n")
		b.WriteString(p.quantity.View())
		if p.opts.QuantityUnit != "" {
			b.WriteString(" " + mutedStyle.Render(p.opts.QuantityUnit))
		}
		b.WriteString("\n")
		p.writeStatus(&b)
		b.WriteString(helpStyle.Render("enter confirm · esc back"))
		return b.String()
	}

	b.WriteString(p.input.View() + "\n")
	switch p.snap.State {
	case suggest.Scheduled, suggest.Fetching:
		b.WriteString(p.spinner.View() + mutedStyle.Render(" searching…") + "\n")
	case suggest.Resolved:
		if len(p.snap.Suggestions) == 0 {
			b.WriteString(mutedStyle.Render("  no results") + "\n")
		}
		for i, s := range p.snap.Suggestions {
			if i == p.cursor {
				b.WriteString(cursorStyle.Render("▸ "+p.opts.Label(s)) + "\n")
			} else {
				b.WriteString("  " + p.opts.Label(s) + "\n")
			}
		}
	}
	p.writeStatus(&b)
	b.WriteString(helpStyle.Render("↑/↓ move · enter choose · esc cancel"))
	return b.String()
}

func (p *Picker[T]) writeStatus(b *strings.Builder) {
	if p.status != "" {
		b.WriteString(errorStyle.Render(p.status) + "\n")
	}
}

// Result returns what was picked once the program has quit.
func (p *Picker[T]) Result() Result[T] {
	return p.result
}

// Close stops the resolver and releases the listener.
func (p *Picker[T]) Close() {
	p.stop.Do(func() {
		p.resolver.Close()
		close(p.wake)
	})
}

// Run shows the picker on the terminal until the user chooses or cancels.
func Run[T any](ctx context.Context, lookup suggest.LookupFunc[T], opts Options[T], progOpts ...tea.ProgramOption) (Result[T], error) {
	p := NewPicker(lookup, opts)
	defer p.Close()

	progOpts = append([]tea.ProgramOption{tea.WithContext(ctx)}, progOpts...)
	if _, err := tea.NewProgram(p, progOpts...).Run(); err != nil {
		return Result[T]{}, fmt.Errorf("running picker: %w", err)
	}
	return p.Result(), nil
}
