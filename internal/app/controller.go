// Package app coordinates the task store, the list view and announcements.
package app

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/hooks"
	"github.com/nibzard/tasklist-go/internal/notify"
	"github.com/nibzard/tasklist-go/internal/todo"
	"github.com/nibzard/tasklist-go/internal/ui"
)

// Announcement texts.
const (
	AddedPrefix   = "New task added, "
	RemovedPrefix = "Task removed, "
	ClearedText   = "Task list cleared successfully, add new tasks!"
)

// EmptyTaskWarning is shown when the user submits an empty task.
const EmptyTaskWarning = "Please add a task!!!"

// ErrEmptyTask is wrapped by the ValidationError returned for empty input.
var ErrEmptyTask = errors.New("task is empty")

// ValidationError reports input rejected before any mutation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap returns the underlying sentinel.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Controller applies user actions to the store and the view.
//
// Every mutation writes the store first and touches the view only when the
// write succeeded.
type Controller struct {
	store     *todo.Store
	list      *ui.List
	announcer notify.Announcer
	hook      *hooks.Runner
	logger    *log.Logger
}

// New returns a Controller. A nil announcer disables announcements and a nil
// logger discards log output.
func New(store *todo.Store, list *ui.List, announcer notify.Announcer, logger *log.Logger) *Controller {
	if announcer == nil {
		announcer = notify.Nop{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{store: store, list: list, announcer: announcer, logger: logger}
}

// SetHook runs h after every successful mutation. A nil hook disables it.
func (c *Controller) SetHook(h *hooks.Runner) {
	c.hook = h
}

func (c *Controller) changed(ctx context.Context, action, task string) {
	c.hook.Run(ctx, hooks.Event{
		Action: action,
		Task:   task,
		Count:  c.list.Len(),
		Key:    c.store.Key(),
	})
}

// List returns the view the controller renders into.
func (c *Controller) List() *ui.List {
	return c.list
}

// Load reads the persisted tasks and renders them.
func (c *Controller) Load(ctx context.Context) error {
	tasks, err := c.store.LoadAll(ctx)
	if err != nil {
		c.logger.Error("load failed", "err", err)
		return err
	}
	c.list.RenderInitial(tasks)
	c.logger.Debug("loaded tasks", "count", len(tasks))
	return nil
}

// Add persists input as a new task. The empty string is rejected; any other
// input, whitespace included, is stored verbatim.
func (c *Controller) Add(ctx context.Context, input string) error {
	if input == "" {
		return &ValidationError{Field: "task", Message: EmptyTaskWarning, Err: ErrEmptyTask}
	}
	if err := c.store.Append(ctx, input); err != nil {
		c.logger.Error("add failed", "task", input, "err", err)
		return err
	}
	row := c.list.RenderAppended(input)
	c.logger.Info("task added", "id", row.ID, "task", input)
	c.announcer.Announce(AddedPrefix + input)
	c.changed(ctx, hooks.ActionAdd, input)
	return nil
}

// Remove deletes the row with rowID and its persisted entry. An unknown
// rowID is ignored and reported as removed=false.
func (c *Controller) Remove(ctx context.Context, rowID string) (bool, error) {
	index := c.list.IndexOf(rowID)
	if index < 0 {
		return false, nil
	}
	text := c.list.Rows()[index].Text
	if err := c.store.RemoveAt(ctx, index, text); err != nil {
		c.logger.Error("remove failed", "task", text, "err", err)
		return false, err
	}
	c.list.RemoveRow(rowID)
	c.logger.Info("task removed", "id", rowID, "task", text)
	c.announcer.Announce(RemovedPrefix + text)
	c.changed(ctx, hooks.ActionRemove, text)
	return true, nil
}

// RemoveText deletes the first task equal to text.
func (c *Controller) RemoveText(ctx context.Context, text string) (bool, error) {
	row, ok := c.list.FindText(text)
	if !ok {
		return false, nil
	}
	return c.Remove(ctx, row.ID)
}

// Clear removes every task. The announcement is made only when there was
// something to clear.
func (c *Controller) Clear(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("clear failed", "err", err)
		return err
	}
	n := c.list.ClearAll()
	c.logger.Info("task list cleared", "count", n)
	if n > 0 {
		c.announcer.Announce(ClearedText)
		c.changed(ctx, hooks.ActionClear, "")
	}
	return nil
}

// Filter narrows the visible rows to those containing query, ignoring case.
func (c *Controller) Filter(query string) {
	c.list.ApplyFilter(query)
}
