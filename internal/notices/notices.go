package notices

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-placemarks/pkg/interfaces"
)

// Level distinguishes confirmations from errors.
type Level string

const (
	LevelUpdate Level = "update"
	LevelError  Level = "error"
)

// Notice is a single operator-facing message.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// List is an ordered, immutable-by-convention set of notices returned next to
// an operation result.
type List []Notice

// Errors returns the error messages in order.
func (l List) Errors() []string {
	return l.messages(LevelError)
}

// Updates returns the update messages in order.
func (l List) Updates() []string {
	return l.messages(LevelUpdate)
}

// HasErrors reports whether any error notice is present.
func (l List) HasErrors() bool {
	for _, n := range l {
		if n.Level == LevelError {
			return true
		}
	}
	return false
}

func (l List) messages(level Level) []string {
	var out []string
	for _, n := range l {
		if n.Level == level {
			out = append(out, n.Message)
		}
	}
	return out
}

// Collector accumulates notices for the duration of one operation. It is safe
// for concurrent use and satisfies interfaces.NoticeSink.
type Collector struct {
	mu    sync.Mutex
	items List
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) AddUpdate(message string) {
	c.add(LevelUpdate, message)
}

func (c *Collector) AddError(message string) {
	c.add(LevelError, message)
}

// Errorf formats and records an error notice.
func (c *Collector) Errorf(format string, args ...any) {
	c.add(LevelError, fmt.Sprintf(format, args...))
}

// Merge appends every notice of list.
func (c *Collector) Merge(list List) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, list...)
}

// List returns a copy of the collected notices.
func (c *Collector) List() List {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return nil
	}
	out := make(List, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collector) add(level Level, message string) {
	if c == nil || message == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, Notice{Level: level, Message: message})
}

var _ interfaces.NoticeSink = (*Collector)(nil)
