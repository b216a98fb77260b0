package ledger

import "github.com/alex-pricope/election-ledger/logging"

// Subscribe registers fn to run after every committed vote. Observers run
// synchronously on the voting goroutine, outside any ledger lock. The returned
// function removes the subscription.
func (l *Ledger) Subscribe(fn func(VoteCast)) (unsubscribe func()) {
	l.subsMu.Lock()
	defer l.subsMu.Unlock()

	id := l.nextSubID
	l.nextSubID++
	l.subscribers[id] = fn

	return func() {
		l.subsMu.Lock()
		defer l.subsMu.Unlock()
		delete(l.subscribers, id)
	}
}

func (l *Ledger) publish(event VoteCast) {
	l.subsMu.RLock()
	subs := make([]func(VoteCast), 0, len(l.subscribers))
	for _, fn := range l.subscribers {
		subs = append(subs, fn)
	}
	l.subsMu.RUnlock()

	for _, fn := range subs {
		l.notify(fn, event)
	}
}

// notify isolates the ledger from a panicking observer; the vote is already committed.
func (l *Ledger) notify(fn func(VoteCast), event VoteCast) {
	defer func() {
		if r := recover(); r != nil {
			logging.Log.Errorf("LEDGER: VoteCast observer panicked: %v", r)
		}
	}()
	fn(event)
}
