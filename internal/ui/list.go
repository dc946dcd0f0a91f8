package ui

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

// Row is one displayed task.
type Row struct {
	ID     string
	Text   string
	Hidden bool
}

// List is the in-memory view of the task list. Row order matches the
// persisted order. It is not safe for concurrent use.
type List struct {
	rows    []Row
	query   string
	entropy io.Reader
	now     func() time.Time
}

// NewList returns an empty List.
func NewList() *List {
	return &List{
		entropy: ulid.Monotonic(randReader{}, 0),
		now:     time.Now,
	}
}

// RenderInitial replaces all rows with one row per task, in order.
func (l *List) RenderInitial(tasks []string) {
	l.rows = make([]Row, 0, len(tasks))
	for _, task := range tasks {
		l.rows = append(l.rows, l.newRow(task))
	}
}

// RenderAppended adds a row for task at the end, leaving existing rows
// untouched. The active filter applies to the new row.
func (l *List) RenderAppended(task string) Row {
	row := l.newRow(task)
	l.rows = append(l.rows, row)
	return row
}

// RemoveRow removes the row with the given id. It returns the removed row
// and its former position; ok is false when no row has that id.
func (l *List) RemoveRow(id string) (row Row, index int, ok bool) {
	index = l.IndexOf(id)
	if index < 0 {
		return Row{}, -1, false
	}
	row = l.rows[index]
	l.rows = append(l.rows[:index:index], l.rows[index+1:]...)
	return row, index, true
}

// ClearAll removes every row and returns how many there were.
func (l *List) ClearAll() int {
	n := len(l.rows)
	l.rows = nil
	return n
}

// ApplyFilter shows exactly the rows whose lower-cased text contains the
// lower-cased query. An empty query shows every row.
func (l *List) ApplyFilter(query string) {
	l.query = strings.ToLower(query)
	for i := range l.rows {
		l.rows[i].Hidden = !l.matches(l.rows[i].Text)
	}
}

// Query returns the active, lower-cased filter.
func (l *List) Query() string {
	return l.query
}

// Rows returns a copy of all rows, hidden ones included.
func (l *List) Rows() []Row {
	return append([]Row(nil), l.rows...)
}

// Visible returns the rows not hidden by the filter.
func (l *List) Visible() []Row {
	var out []Row
	for _, r := range l.rows {
		if !r.Hidden {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of rows.
func (l *List) Len() int {
	return len(l.rows)
}

// Texts returns the row texts in order.
func (l *List) Texts() []string {
	out := make([]string, len(l.rows))
	for i, r := range l.rows {
		out[i] = r.Text
	}
	return out
}

// IndexOf returns the position of the row with id, or -1.
func (l *List) IndexOf(id string) int {
	for i, r := range l.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// FindText returns the first row whose text equals text.
func (l *List) FindText(text string) (Row, bool) {
	for _, r := range l.rows {
		if r.Text == text {
			return r, true
		}
	}
	return Row{}, false
}

func (l *List) matches(text string) bool {
	return l.query == "" || strings.Contains(strings.ToLower(text), l.query)
}

func (l *List) newRow(text string) Row {
	return Row{ID: l.newID(), Text: text, Hidden: !l.matches(text)}
}

func (l *List) newID() string {
	id, err := ulid.New(ulid.Timestamp(l.now()), l.entropy)
	if err != nil {
		return fmt.Sprintf("%d", l.now().UnixNano())
	}
	return id.String()
}
