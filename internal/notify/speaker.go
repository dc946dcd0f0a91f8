package notify

import (
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/utils"
)

// Engines are the speech binaries tried, in order, when no command is
// configured.
var Engines = []string{"say", "espeak-ng", "espeak", "spd-say"}

// Speaker runs a text-to-speech binary with the text as its last argument.
type Speaker struct {
	command string
	voice   string
	args    []string
	logger  *log.Logger

	resolve func(string) (string, error)
	start   func(name string, args []string) error

	once     sync.Once
	binary   string
	warnOnce sync.Once
}

// NewSpeaker returns a Speaker. The engine is resolved on first use.
func NewSpeaker(opts Options) *Speaker {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Speaker{
		command: opts.Command,
		voice:   opts.Voice,
		args:    append([]string(nil), opts.Args...),
		logger:  logger,
		resolve: utils.ResolveExecutable,
		start:   startDetached,
	}
}

// Announce starts the engine and returns immediately.
func (s *Speaker) Announce(text string) {
	bin := s.Engine()
	if bin == "" {
		s.warnOnce.Do(func() {
			s.logger.Debug("speech engine unavailable, announcements disabled", "command", s.command)
		})
		return
	}
	if err := s.start(bin, s.argv(bin, text)); err != nil {
		s.logger.Debug("speech engine failed to start", "engine", bin, "err", err)
	}
}

// Engine returns the resolved engine path, or "" if none is available.
func (s *Speaker) Engine() string {
	s.once.Do(func() {
		s.binary = DetectEngine(s.command, s.resolve)
	})
	return s.binary
}

// endOfOptions lists engines whose option parser accepts "--".
var endOfOptions = map[string]bool{"espeak": true, "espeak-ng": true, "spd-say": true}

// argv builds the engine arguments. The text is never read as an option:
// engines in endOfOptions get "--" before it, and for any other engine a
// leading dash is shielded with a space.
func (s *Speaker) argv(bin, text string) []string {
	argv := append([]string(nil), s.args...)
	if s.voice != "" {
		argv = append(argv, "-v", s.voice)
	}
	if endOfOptions[engineName(bin)] {
		return append(argv, "--", text)
	}
	if strings.HasPrefix(text, "-") {
		text = " " + text
	}
	return append(argv, text)
}

func engineName(bin string) string {
	name := strings.ToLower(filepath.Base(bin))
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// DetectEngine resolves command, or the first available entry of Engines when
// command is empty. It returns "" when nothing is found.
func DetectEngine(command string, resolve func(string) (string, error)) string {
	if resolve == nil {
		resolve = utils.ResolveExecutable
	}
	candidates := Engines
	if command != "" {
		candidates = []string{command}
	}
	for _, c := range candidates {
		if path, err := resolve(c); err == nil {
			return path
		}
	}
	return ""
}

func startDetached(name string, args []string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
