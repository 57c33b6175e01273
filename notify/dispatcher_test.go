package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("relay down")
	}
	m.sent = append(m.sent, to)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestDispatcherDeliversEnqueuedEvents(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, 8)
	d.Start(context.Background())

	d.Enqueue(Event{NotificationID: 1, Email: "a@example.com", Title: "hi"})
	d.Enqueue(Event{NotificationID: 2, Email: "b@example.com", Title: "hi"})
	d.Close()

	require.Equal(t, 2, mailer.count())
}

func TestDispatcherSwallowsMailerFailures(t *testing.T) {
	mailer := &recordingMailer{fail: true}
	d := NewDispatcher(mailer, 8)
	d.Start(context.Background())

	d.Enqueue(Event{NotificationID: 1, Email: "a@example.com", Title: "hi"})
	d.Close()

	require.Zero(t, mailer.count())
}

func TestDispatcherDropsWhenClosed(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, 8)
	d.Start(context.Background())
	d.Close()

	d.Enqueue(Event{NotificationID: 1, Email: "late@example.com"})
	time.Sleep(10 * time.Millisecond)
	require.Zero(t, mailer.count())
}

func TestDispatcherStopsOnContextCancel(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, 8)
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		d.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after context cancel")
	}
}
