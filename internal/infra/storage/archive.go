package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/duskfall-games/salem/server/internal/game"
	"github.com/duskfall-games/salem/server/internal/platform/logger"
	"github.com/duskfall-games/salem/server/internal/platform/metrics"
)

// Archive is the write-behind sink for finished matches. StoreMatch hands
// the record to a single background writer, so a room is released the
// moment its match ends.
type Archive struct {
	db  *sql.DB
	log *logger.Logger
	mx  *metrics.Collector

	queue chan game.MatchRecord
	done  chan struct{}
}

func NewArchive(db *sql.DB, log *logger.Logger) *Archive {
	a := &Archive{
		db:    db,
		log:   log,
		mx:    metrics.Get(),
		queue: make(chan game.MatchRecord, 16),
		done:  make(chan struct{}),
	}
	go a.writer()
	return a
}

// StoreMatch implements game.ArchiveSink. It never blocks; with the
// writer this far behind, losing the record beats stalling the room.
func (a *Archive) StoreMatch(rec game.MatchRecord) {
	select {
	case a.queue <- rec:
	default:
		a.mx.ArchiveErrors.Inc()
		a.log.Errorf("archive queue full, dropping record of room %d", rec.RoomID)
	}
}

// Close drains queued records and stops the writer.
func (a *Archive) Close() {
	close(a.queue)
	<-a.done
}

func (a *Archive) writer() {
	defer close(a.done)
	for rec := range a.queue {
		if err := a.store(rec); err != nil {
			a.mx.ArchiveErrors.Inc()
			a.log.Errorf("failed to archive match from room %d: %v", rec.RoomID, err)
			continue
		}
		a.mx.ArchivesStored.Inc()
		a.log.Infof("archived match from room %d (%d events)", rec.RoomID, len(rec.Events))
	}
}

func (a *Archive) store(rec game.MatchRecord) error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	title := rec.Title
	var inventor any
	var formation, constraints, exclusion any
	if rec.Setup != nil {
		if v, ok := rec.Setup["title"].(string); ok && v != "" {
			title = v
		}
		if v, ok := rec.Setup["inventor"].(string); ok {
			inventor = v
		}
		if formation, err = marshalColumn(rec.Setup["formation"]); err != nil {
			return err
		}
		if constraints, err = marshalColumn(rec.Setup["constraints"]); err != nil {
			return err
		}
		if exclusion, err = marshalColumn(rec.Setup["exclusion"]); err != nil {
			return err
		}
	}

	// Seats beyond the head count stay NULL.
	players := make([]any, 15)
	for seat := 1; seat <= 15; seat++ {
		if nickname, ok := rec.Lineup[seat]; ok {
			players[seat-1] = nickname
		}
	}

	args := []any{rec.RoomID, title, rec.Private, inventor, formation, constraints, exclusion, len(rec.Lineup)}
	args = append(args, players...)
	args = append(args, time.Now().UTC())
	res, err := tx.Exec(`
		INSERT INTO matches (room_id, title, private, inventor, formation, constraints, exclusion, total,
			player_1, player_2, player_3, player_4, player_5, player_6, player_7, player_8,
			player_9, player_10, player_11, player_12, player_13, player_14, player_15, stored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to insert match metadata: %w", err)
	}
	matchID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read match id: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO match_events (match_id, seq, row) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer stmt.Close()
	for i, ev := range rec.Events {
		row, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event %d: %w", i, err)
		}
		if _, err := stmt.Exec(matchID, i, string(row)); err != nil {
			return fmt.Errorf("failed to insert event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit archive transaction: %w", err)
	}
	return nil
}

func marshalColumn(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal setup column: %w", err)
	}
	return string(data), nil
}

// StoredMatch is one archived match's metadata row.
type StoredMatch struct {
	ID     int64  `json:"id"`
	RoomID int    `json:"room_id"`
	Title  string `json:"title"`
	Total  int    `json:"total"`
}

// Matches lists archived matches, newest first.
func (a *Archive) Matches(ctx context.Context) ([]StoredMatch, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, room_id, title, total FROM matches ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var out []StoredMatch
	for rows.Next() {
		var m StoredMatch
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Title, &m.Total); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MatchEvents replays the transcript of one archived match in order.
func (a *Archive) MatchEvents(ctx context.Context, matchID int64) ([]game.RecordedEvent, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT row FROM match_events WHERE match_id = ? ORDER BY seq ASC`, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to read match %d events: %w", matchID, err)
	}
	defer rows.Close()

	var out []game.RecordedEvent
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		var ev game.RecordedEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return nil, fmt.Errorf("failed to decode event row: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
