// Package hooks runs an external command after each change to the task list.
//
// The command receives the action and the task as arguments, the event as a
// JSON object on stdin, and the same fields as TASKLIST_* environment
// variables:
//
//	my-hook add "buy milk"    # stdin: {"action":"add","task":"buy milk",...}
//
// A hook that fails is reported but never undoes the change.
package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Actions reported to hooks.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionClear  = "clear"
)

// DefaultTimeout bounds a single hook run.
const DefaultTimeout = 10 * time.Second

// queueSize bounds detached runs waiting for the worker.
const queueSize = 64

// Event describes one change to the task list.
type Event struct {
	Action string    `json:"action"`
	Task   string    `json:"task,omitempty"`
	Count  int       `json:"count"` // tasks left after the change
	Key    string    `json:"key"`
	Time   time.Time `json:"time"`
}

// Options configures a single hook invocation.
type Options struct {
	Command string // executable plus optional arguments, split on whitespace
	Event   Event
	WorkDir string
	Timeout time.Duration
}

// Result describes a hook invocation.
type Result struct {
	Ran      bool
	Command  []string
	ExitCode int
	Output   string
}

// Invoke runs the hook for opts.Event. An empty command is a no-op.
func Invoke(ctx context.Context, opts Options) (Result, error) {
	var result Result
	argv := strings.Fields(opts.Command)
	if len(argv) == 0 {
		return result, nil
	}
	if opts.Event.Action == "" {
		return result, errors.New("hook event has no action")
	}

	payload, err := json.Marshal(opts.Event)
	if err != nil {
		return result, fmt.Errorf("encode hook event: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	argv = append(argv, opts.Event.Action, opts.Event.Task)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Env = append(os.Environ(), eventEnv(opts.Event)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	result.Command = argv
	runErr := cmd.Run()
	result.Output = strings.TrimSpace(out.String())
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.Ran = true
		}
		result.ExitCode = exitCodeFromError(runErr)
		return result, fmt.Errorf("hook %s: %w", argv[0], runErr)
	}
	result.Ran = true
	return result, nil
}

func eventEnv(ev Event) []string {
	return []string{
		"TASKLIST_ACTION=" + ev.Action,
		"TASKLIST_TASK=" + ev.Task,
		"TASKLIST_COUNT=" + strconv.Itoa(ev.Count),
		"TASKLIST_KEY=" + ev.Key,
	}
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Runner invokes a configured hook and logs the outcome. A nil Runner, or one
// with an empty Command, does nothing.
//
// A Detached runner returns from Run immediately and invokes hooks one at a
// time, in order, on a background worker. Wait drains that worker.
type Runner struct {
	Command  string
	WorkDir  string
	Timeout  time.Duration
	Logger   *log.Logger
	Detached bool

	mu     sync.Mutex
	queue  chan job
	done   chan struct{}
	closed bool
}

type job struct {
	ctx context.Context
	ev  Event
}

// Run invokes the hook for ev. Failures are logged, not returned.
func (r *Runner) Run(ctx context.Context, ev Event) {
	if r == nil || strings.TrimSpace(r.Command) == "" {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	if !r.Detached {
		r.invoke(ctx, ev)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.invoke(ctx, ev)
		return
	}
	if r.queue == nil {
		r.queue = make(chan job, queueSize)
		r.done = make(chan struct{})
		go r.work(r.queue, r.done)
	}
	select {
	case r.queue <- job{ctx: ctx, ev: ev}:
	default:
		r.warn("hook queue full, dropping event", "action", ev.Action)
	}
}

// Wait stops accepting detached runs and blocks until queued ones have
// finished. Later calls to Run are synchronous.
func (r *Runner) Wait() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.closed = true
	queue, done := r.queue, r.done
	r.queue = nil
	r.mu.Unlock()

	if queue == nil {
		return
	}
	close(queue)
	<-done
}

func (r *Runner) work(queue <-chan job, done chan<- struct{}) {
	defer close(done)
	for j := range queue {
		r.invoke(j.ctx, j.ev)
	}
}

func (r *Runner) invoke(ctx context.Context, ev Event) {
	result, err := Invoke(ctx, Options{
		Command: r.Command,
		Event:   ev,
		WorkDir: r.WorkDir,
		Timeout: r.Timeout,
	})
	if r.Logger == nil {
		return
	}
	if err != nil {
		r.Logger.Warn("hook failed", "action", ev.Action, "exit", result.ExitCode, "output", result.Output, "err", err)
		return
	}
	r.Logger.Debug("hook ran", "action", ev.Action, "command", strings.Join(result.Command, " "))
}

func (r *Runner) warn(msg string, keyvals ...interface{}) {
	if r.Logger != nil {
		r.Logger.Warn(msg, keyvals...)
	}
}
