// Package notify carries short-lived user notifications ("toasts") from
// handlers to whichever front end shows them.
package notify

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Level is the severity of a notice.
type Level string

// Notice levels.
const (
	Success Level = "success"
	Info    Level = "info"
	Warn    Level = "warn"
	Error   Level = "error"
)

// Notice is one transient message.
type Notice struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(Notice)
}

// Successf, Infof, Warnf and Errorf build notices.
func Successf(format string, args ...any) Notice {
	return Notice{Level: Success, Text: fmt.Sprintf(format, args...)}
}

func Infof(format string, args ...any) Notice {
	return Notice{Level: Info, Text: fmt.Sprintf(format, args...)}
}

func Warnf(format string, args ...any) Notice {
	return Notice{Level: Warn, Text: fmt.Sprintf(format, args...)}
}

func Errorf(format string, args ...any) Notice {
	return Notice{Level: Error, Text: fmt.Sprintf(format, args...)}
}

var styles = map[Level]lipgloss.Style{
	Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
}

var marks = map[Level]string{
	Success: "✔",
	Info:    "•",
	Warn:    "!",
	Error:   "✖",
}

// Render formats a notice for a terminal.
func Render(n Notice) string {
	style, ok := styles[n.Level]
	if !ok {
		style = styles[Info]
	}
	mark := marks[n.Level]
	if mark == "" {
		mark = marks[Info]
	}
	return style.Render(mark + " " + n.Text)
}

// Printer writes notices to a terminal, one per line.
type Printer struct {
	W io.Writer
}

// Notify implements Notifier.
func (p Printer) Notify(n Notice) {
	fmt.Fprintln(p.W, Render(n))
}

// Recorder keeps notices in memory.
type Recorder struct {
	Notices []Notice
}

// Notify implements Notifier.
func (r *Recorder) Notify(n Notice) {
	r.Notices = append(r.Notices, n)
}
