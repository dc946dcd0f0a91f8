// Package notify announces task list changes.
//
// Announcements are fire-and-forget: an Announcer never reports failure to
// its caller and never blocks on the underlying engine.
package notify

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/utils"
)

// Announcement modes.
const (
	ModeNone   = "none"
	ModeLog    = "log"
	ModeSpeech = "speech"
)

var modeAliases = map[string]string{
	"":       ModeNone,
	"none":   ModeNone,
	"off":    ModeNone,
	"false":  ModeNone,
	"log":    ModeLog,
	"speech": ModeSpeech,
	"speak":  ModeSpeech,
	"say":    ModeSpeech,
	"tts":    ModeSpeech,
}

// NormalizeMode returns the canonical announce mode for input.
func NormalizeMode(input string) (string, bool) {
	return utils.NormalizeChoice(input, modeAliases)
}

// Announcer speaks or otherwise surfaces a short message.
type Announcer interface {
	Announce(text string)
}

// Nop discards announcements.
type Nop struct{}

// Announce does nothing.
func (Nop) Announce(string) {}

// Recorder keeps every announcement in memory.
type Recorder struct {
	mu    sync.Mutex
	texts []string
}

// Announce records text.
func (r *Recorder) Announce(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

// Texts returns a copy of the recorded announcements.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

// Last returns the most recent announcement, or "".
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.texts) == 0 {
		return ""
	}
	return r.texts[len(r.texts)-1]
}

// Logger writes announcements to a logger at info level.
type Logger struct {
	logger *log.Logger
}

// NewLogger returns a Logger announcer.
func NewLogger(logger *log.Logger) *Logger {
	return &Logger{logger: logger}
}

// Announce logs text.
func (l *Logger) Announce(text string) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Info("announce", "text", text)
}

// Options configures New.
type Options struct {
	// Command is the speech engine. Empty means auto-detect.
	Command string
	Voice   string
	Args    []string
	Logger  *log.Logger
}

// New returns the announcer for mode.
func New(mode string, opts Options) (Announcer, error) {
	m, ok := NormalizeMode(mode)
	if !ok {
		return nil, fmt.Errorf("unknown announce mode %q (want none, log or speech)", mode)
	}
	switch m {
	case ModeLog:
		return NewLogger(opts.Logger), nil
	case ModeSpeech:
		return NewSpeaker(opts), nil
	default:
		return Nop{}, nil
	}
}
