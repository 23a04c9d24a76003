// Package listener implements the change-notification dispatcher: after
// each committed write or batch, registered subscribers whose query
// matches an affected path are invoked with the matching document set
// (spec.md §4.10).
//
// Adapted from the teacher's db/background.go coordination idiom (a
// shutdown channel plus a sync.WaitGroup guarding goroutines), generalized
// from "one background worker per kind of job" to "one background worker
// per subscription", which is what lets different subscribers run
// concurrently with each other while each individually observes commit
// order (spec.md §5 "Listener callbacks fire in commit order").
package listener

import (
	"sync"

	"github.com/google/uuid"
)

// CommitEvent describes one committed write or batch: the sequence
// assigned to its commit marker and every path it touched, each carrying
// the post-commit value (nil Payload for a deletion).
type CommitEvent struct {
	Sequence uint64
	Changes  []Change
}

// Change is one path's post-commit state within a CommitEvent.
type Change struct {
	Path    string
	Deleted bool
	Payload []byte
}

// Query decides whether a commit touches a subscription, and which of its
// changes the subscription should see. spec.md §4.10 leaves the query
// grammar itself to an external index collaborator; the dispatcher only
// needs this Matches contract.
type Query interface {
	Matches(changes []Change) []Change
}

// PrefixQuery is the one query kind the core implements natively: every
// path equal to or nested under Prefix (spec.md §4.10 "a single path
// prefix").
type PrefixQuery struct {
	Prefix string
}

// Matches implements Query.
func (q PrefixQuery) Matches(changes []Change) []Change {
	var out []Change
	for _, c := range changes {
		if c.Path == q.Prefix || len(c.Path) > len(q.Prefix) && c.Path[:len(q.Prefix)] == q.Prefix && c.Path[len(q.Prefix)] == '/' {
			out = append(out, c)
		}
	}
	return out
}

// Callback receives the matching document set for one commit.
type Callback func(matched []Change)

type subscription struct {
	id       string
	query    Query
	callback Callback
	queue    chan CommitEvent
	stop     chan struct{}
}

// Dispatcher owns the subscription registry and fans committed events out
// to each matching subscriber on its own serialized worker.
type Dispatcher struct {
	mu   sync.RWMutex
	subs map[string]*subscription
	wg   sync.WaitGroup
}

// New creates an empty Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{subs: make(map[string]*subscription)}
}

// Listen registers a subscription and starts its delivery worker. Returns
// an id usable with Unlisten.
func (d *Dispatcher) Listen(query Query, cb Callback) string {
	id := uuid.NewString()
	sub := &subscription{
		id:       id,
		query:    query,
		callback: cb,
		queue:    make(chan CommitEvent, 64),
		stop:     make(chan struct{}),
	}

	d.mu.Lock()
	d.subs[id] = sub
	d.mu.Unlock()

	d.wg.Add(1)
	go d.runSubscription(sub)
	return id
}

// Unlisten removes a subscription and stops its worker. Events already
// queued for it may or may not be delivered before the worker exits.
func (d *Dispatcher) Unlisten(id string) {
	d.mu.Lock()
	sub, ok := d.subs[id]
	if ok {
		delete(d.subs, id)
	}
	d.mu.Unlock()
	if ok {
		close(sub.stop)
	}
}

// Publish enqueues a commit event to every current subscription's queue.
// This never blocks on a callback: enqueueing is independent of the
// subscription's own worker (spec.md §4.10 "Failing callbacks do not
// affect engine correctness and do not block subsequent commits").
func (d *Dispatcher) Publish(event CommitEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, sub := range d.subs {
		select {
		case sub.queue <- event:
		default:
			// Subscriber is falling behind; drop rather than block the
			// writer. A slow consumer loses liveness, not correctness.
		}
	}
}

func (d *Dispatcher) runSubscription(sub *subscription) {
	defer d.wg.Done()
	for {
		select {
		case event := <-sub.queue:
			matched := sub.query.Matches(event.Changes)
			if len(matched) == 0 {
				continue
			}
			invokeSafely(sub.callback, matched)
		case <-sub.stop:
			return
		}
	}
}

// invokeSafely runs cb, converting a panic into a no-op so one broken
// callback cannot take down the dispatcher (spec.md §4.10).
func invokeSafely(cb Callback, matched []Change) {
	defer func() { _ = recover() }()
	cb(matched)
}

// Close stops every subscription's worker and waits for them to exit.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	subs := make([]*subscription, 0, len(d.subs))
	for _, s := range d.subs {
		subs = append(subs, s)
	}
	d.subs = make(map[string]*subscription)
	d.mu.Unlock()

	for _, s := range subs {
		close(s.stop)
	}
	d.wg.Wait()
}
