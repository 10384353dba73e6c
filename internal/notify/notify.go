// Package notify delivers the single user-facing message each store
// operation produces.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Terminal prints one line per notification, colored when w is a terminal.
type Terminal struct {
	mu  sync.Mutex
	w   io.Writer
	ok  lipgloss.Style
	bad lipgloss.Style
}

func NewTerminal(w io.Writer) *Terminal {
	out := termenv.NewOutput(w)
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(out.EnvColorProfile())
	return &Terminal{
		w:   w,
		ok:  r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "42"}).Bold(true),
		bad: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"}).Bold(true),
	}
}

func (t *Terminal) Success(msg string) { t.print(t.ok.Render("✓"), msg) }
func (t *Terminal) Error(msg string)   { t.print(t.bad.Render("✗"), msg) }

func (t *Terminal) print(mark, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "%s %s\n", mark, msg)
}

// Log routes notifications to a logger; used where no terminal is attached.
type Log struct {
	L logrus.FieldLogger
}

func (l Log) Success(msg string) { l.L.WithField("notify", LevelSuccess).Info(msg) }
func (l Log) Error(msg string)   { l.L.WithField("notify", LevelError).Error(msg) }

type Message struct {
	Level Level
	Text  string
}

// Recorder keeps every notification in order.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Error(msg string)   { r.add(LevelError, msg) }

func (r *Recorder) add(lv Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, Message{Level: lv, Text: msg})
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return Message{}, false
	}
	return r.msgs[len(r.msgs)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = nil
}

// Func adapts a plain callback, e.g. a TUI status line setter.
type Func func(Level, string)

func (f Func) Success(msg string) { f(LevelSuccess, msg) }
func (f Func) Error(msg string)   { f(LevelError, msg) }

// Tee fans every notification out to each of ns in order.
func Tee(ns ...Notifier) Notifier {
	return Func(func(lv Level, msg string) {
		for _, n := range ns {
			if lv == LevelError {
				n.Error(msg)
			} else {
				n.Success(msg)
			}
		}
	})
}

// Discard drops everything.
var Discard Notifier = Func(func(Level, string) {})
