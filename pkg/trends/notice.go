package trends

import "sync"

// NoticeLevel tells the UI how to present a notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// NoticeKind distinguishes notices the fetcher emits.
type NoticeKind string

const (
	NoticeRetry   NoticeKind = "retry"
	NoticeFailure NoticeKind = "failure"
	NoticeNoData  NoticeKind = "no_data"
)

// Notice is a transient, user-visible status message.
type Notice struct {
	Kind    NoticeKind  `json:"kind"`
	Level   NoticeLevel `json:"level"`
	Geo     string      `json:"geo,omitempty"`
	Message string      `json:"message"`
}

// Notifier receives status notices while a fetch is in progress.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Notices collects notices in emission order.
type Notices struct {
	mu    sync.Mutex
	items []Notice
}

func (c *Notices) Notify(n Notice) {
	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()
}

// All returns a copy of the collected notices.
func (c *Notices) All() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notice, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns how many notices of the given kind were collected.
func (c *Notices) Count(kind NoticeKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, item := range c.items {
		if item.Kind == kind {
			n++
		}
	}
	return n
}

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}
