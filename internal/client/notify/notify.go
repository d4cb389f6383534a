// Package notify shows on-device notifications and tracks whether the user
// allowed them.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

type Notification struct {
	Title string
	Body  string
	Icon  string
	Tag   string
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
	// Supported reports whether the device can show notifications at all.
	Supported() bool
}

// TerminalNotifier rings the bell and prints the notification to w.
type TerminalNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminalNotifier(w io.Writer) *TerminalNotifier {
	return &TerminalNotifier{w: w}
}

func (t *TerminalNotifier) Supported() bool { return t.w != nil }

func (t *TerminalNotifier) Notify(_ context.Context, n Notification) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := fmt.Fprintf(t.w, "\a\n[%s] %s\n%s\n", n.Tag, n.Title, n.Body)
	return err
}
