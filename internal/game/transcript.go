package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RecordedEvent is one transcript line: what was said or shown, by whom,
// to whom, and when. The recipient list names accounts, not seats, so a
// record stays readable after nicknames are forgotten.
type RecordedEvent struct {
	// ID correlates a row with server logs; it stays out of the
	// serialized record.
	ID      string    `json:"-"`
	Type    EventType `json:"type"`
	Content Content   `json:"content"`
	From    string    `json:"from,omitempty"`
	To      []string  `json:"to"`
	Time    time.Time `json:"time"`
}

// MatchRecord is a finished match bundled for the archive: the metadata a
// replay needs plus the full event transcript.
type MatchRecord struct {
	RoomID  int             `json:"room_id"`
	Title   string          `json:"title"`
	Private bool            `json:"private"`
	Lineup  map[int]string  `json:"lineup"`
	Setup   Content         `json:"setup"`
	Events  []RecordedEvent `json:"events"`
}

// ArchiveSink persists finished matches. Implementations must not block
// the caller for long; the room hands the record off once per match.
type ArchiveSink interface {
	StoreMatch(rec MatchRecord)
}

// transcript accumulates the running match's record. Writes come from the
// room goroutine only; the mutex exists for the admin endpoint, which
// snapshots mid-match.
type transcript struct {
	mu     sync.Mutex
	events []RecordedEvent
}

// add appends one event. Content is cloned so later mutation of the live
// map cannot rewrite history.
func (t *transcript) add(now time.Time, e *Event) {
	to := make([]string, len(e.To))
	for i, l := range e.To {
		to[i] = l.recordName()
	}
	rec := RecordedEvent{
		ID:      uuid.NewString(),
		Type:    e.Type,
		Content: e.Content.clone(),
		From:    e.From,
		To:      to,
		Time:    now,
	}
	t.mu.Lock()
	t.events = append(t.events, rec)
	t.mu.Unlock()
}

// snapshot copies the record so far.
func (t *transcript) snapshot() []RecordedEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]RecordedEvent, len(t.events))
	copy(out, t.events)
	return out
}

// reset empties the record for a fresh match.
func (t *transcript) reset() {
	t.mu.Lock()
	t.events = nil
	t.mu.Unlock()
}

// Transcript exposes the running record for the admin surface. Safe to
// call from any goroutine.
func (r *Room) Transcript() []RecordedEvent {
	return r.transcript.snapshot()
}

// matchRecord bundles the finished match for the archive.
func (r *Room) matchRecord() MatchRecord {
	lineup := make(map[int]string, len(r.lineup))
	for _, p := range r.lineup {
		lineup[p.Index] = p.Nickname
	}
	var setup Content
	if r.setup != nil {
		setup = r.setup.describe()
	}
	return MatchRecord{
		RoomID:  r.ID,
		Title:   r.Title,
		Private: r.Password != "",
		Lineup:  lineup,
		Setup:   setup,
		Events:  r.transcript.snapshot(),
	}
}
