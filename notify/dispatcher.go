package notify

import (
	"context"
	"log"
	"sync"
)

// Event is one outbound email describing a settlement outcome. The
// notification row already exists by the time an event is enqueued.
type Event struct {
	NotificationID uint
	Email          string
	Title          string
	Message        string
}

// Dispatcher drains a buffered queue of events in the background.
// Settlement never blocks on it and never learns about delivery failures;
// those are logged and swallowed.
type Dispatcher struct {
	Mailer Mailer

	ch     chan Event
	wg     sync.WaitGroup
	closed chan struct{}
	once   sync.Once
}

func NewDispatcher(mailer Mailer, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		Mailer: mailer,
		ch:     make(chan Event, buffer),
		closed: make(chan struct{}),
	}
}

// Start launches the delivery loop. It stops when the context is cancelled
// or Close is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-d.closed:
				// drain whatever was enqueued before Close
				for {
					select {
					case ev := <-d.ch:
						d.deliver(ev)
					default:
						return
					}
				}
			case ev := <-d.ch:
				d.deliver(ev)
			}
		}
	}()
}

func (d *Dispatcher) deliver(ev Event) {
	if err := d.Mailer.Send(ev.Email, ev.Title, ev.Message); err != nil {
		log.Printf("notification %d: send to %s failed: %v", ev.NotificationID, ev.Email, err)
		return
	}
	log.Printf("notification %d: sent to %s", ev.NotificationID, ev.Email)
}

// Enqueue hands an event to the background loop without blocking. A full
// queue drops the event with a log line; the in-app notification row is
// already persisted, only the email is lost.
func (d *Dispatcher) Enqueue(ev Event) {
	select {
	case <-d.closed:
		log.Printf("notification %d: dispatcher closed, email dropped", ev.NotificationID)
		return
	default:
	}
	select {
	case d.ch <- ev:
	default:
		log.Printf("notification %d: queue full, email dropped", ev.NotificationID)
	}
}

// Close stops accepting events and waits for in-flight deliveries.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.closed)
	})
	d.wg.Wait()
}
