package reminder

import (
	"sync"
	"time"

	"papelaria-pdv/internal/logger"
)

// Reminder fires on a fixed interval to nudge the operator into taking a
// backup. Each tick marks the reminder as due and runs the optional hook.
type Reminder struct {
	interval time.Duration
	onTick   func()
	log      logger.Logger

	mu     sync.Mutex
	stop   chan struct{}
	done   chan struct{}
	due    bool
	lastAt time.Time
}

// New builds a stopped reminder. onTick may be nil.
func New(interval time.Duration, log logger.Logger, onTick func()) *Reminder {
	if log == nil {
		log = logger.Discard()
	}
	return &Reminder{interval: interval, onTick: onTick, log: log}
}

// Start (re)starts the timer. A running timer is stopped first, so the next
// tick is always a full interval away.
func (r *Reminder) Start() {
	stop := make(chan struct{})
	done := make(chan struct{})

	r.mu.Lock()
	oldStop, oldDone := r.stop, r.done
	r.stop, r.done = stop, done
	r.mu.Unlock()

	// loop takes mu on each tick, so wait for it unlocked
	halt(oldStop, oldDone)
	go r.loop(stop, done)
}

// Stop halts the timer and waits for a running hook to finish. Safe to call
// when not running.
func (r *Reminder) Stop() {
	r.mu.Lock()
	stop, done := r.stop, r.done
	r.stop, r.done = nil, nil
	r.mu.Unlock()

	halt(stop, done)
}

func halt(stop, done chan struct{}) {
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (r *Reminder) loop(stop, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-t.C:
			r.mu.Lock()
			r.due = true
			r.lastAt = now
			r.mu.Unlock()
			r.log.Info("lembrete: faça um backup dos dados")
			if r.onTick != nil {
				r.onTick()
			}
		}
	}
}

// Due reports whether a reminder fired since the last Ack, and when.
func (r *Reminder) Due() (bool, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.due, r.lastAt
}

// Ack clears the due flag, typically after a backup was taken.
func (r *Reminder) Ack() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.due = false
}
