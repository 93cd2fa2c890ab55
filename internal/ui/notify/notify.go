// Package notify delivers scheduled desktop alerts.
//
// Alerts are keyed by id: scheduling an id replaces its pending alert, and a
// request identical to one already delivered is dropped, so a countdown and
// the reminder that follows it never show the same alert twice.
package notify

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"

	"routinetimer/internal/core/clock"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("notification scheduler closed")

// Sender shows an alert right away.
type Sender func(title, body string)

type stopper interface {
	Stop() bool
}

type alertKey struct {
	title string
	body  string
	at    time.Time
}

type pendingAlert struct {
	key   alertKey
	timer stopper
}

// Scheduler holds one pending alert per id.
type Scheduler struct {
	mu        sync.Mutex
	send      Sender
	logger    *slog.Logger
	now       func() time.Time
	afterFunc func(time.Duration, func()) stopper
	pending   map[int]*pendingAlert
	delivered map[int]alertKey
	closed    bool
}

// New creates a scheduler that shows alerts through send.
func New(send Sender, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		send:   send,
		logger: logger,
		now:    clock.System{}.Now,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		pending:   make(map[int]*pendingAlert),
		delivered: make(map[int]alertKey),
	}
}

// NewFyne creates a scheduler that shows alerts as fyne desktop notifications.
func NewFyne(app fyne.App, logger *slog.Logger) *Scheduler {
	return New(func(title, body string) {
		fyne.Do(func() {
			app.SendNotification(fyne.NewNotification(title, body))
		})
	}, logger)
}

// ScheduleAlert shows the alert at the given time, replacing any pending
// alert with the same id. An alert already due is shown immediately, even
// when an identical one is still waiting on its timer, since timers can run
// late after the machine sleeps.
func (scheduler *Scheduler) ScheduleAlert(id int, title, body string, at time.Time) error {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if scheduler.closed {
		return ErrClosed
	}

	key := alertKey{title: title, body: body, at: at}
	if delivered, ok := scheduler.delivered[id]; ok && delivered.equal(key) {
		scheduler.logger.Debug("alert already shown", slog.Int("alert_id", id))
		return nil
	}
	delay := at.Sub(scheduler.now())
	if current, ok := scheduler.pending[id]; ok {
		if current.key.equal(key) && delay > 0 {
			return nil
		}
		current.timer.Stop()
		delete(scheduler.pending, id)
	}
	delete(scheduler.delivered, id)

	if delay <= 0 {
		scheduler.deliverLocked(id, key)
		return nil
	}

	alert := &pendingAlert{key: key}
	alert.timer = scheduler.afterFunc(delay, func() {
		scheduler.fire(id, alert)
	})
	scheduler.pending[id] = alert
	return nil
}

// CancelAlert drops the pending alert for id. Unknown ids are ignored.
func (scheduler *Scheduler) CancelAlert(id int) error {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if current, ok := scheduler.pending[id]; ok {
		current.timer.Stop()
		delete(scheduler.pending, id)
	}
	delete(scheduler.delivered, id)
	return nil
}

// Close stops every pending alert.
func (scheduler *Scheduler) Close() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	scheduler.closed = true
	for id, current := range scheduler.pending {
		current.timer.Stop()
		delete(scheduler.pending, id)
	}
}

func (scheduler *Scheduler) fire(id int, alert *pendingAlert) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	// A replaced or canceled alert may still fire once its timer raced Stop.
	if scheduler.closed || scheduler.pending[id] != alert {
		return
	}
	delete(scheduler.pending, id)
	scheduler.deliverLocked(id, alert.key)
}

func (scheduler *Scheduler) deliverLocked(id int, key alertKey) {
	scheduler.delivered[id] = key
	if scheduler.send == nil {
		return
	}
	scheduler.logger.Debug("alert shown", slog.Int("alert_id", id), slog.String("title", key.title))
	scheduler.send(key.title, key.body)
}

func (key alertKey) equal(other alertKey) bool {
	return key.title == other.title && key.body == other.body && key.at.Equal(other.at)
}
