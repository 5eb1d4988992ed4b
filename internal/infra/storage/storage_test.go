package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskfall-games/salem/server/internal/game"
	"github.com/duskfall-games/salem/server/internal/platform/logger"
)

func openTestDB(t *testing.T) *UsersRepo {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "salem.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUsersRepo(db)
}

func TestAuthenticateRegistersNewcomers(t *testing.T) {
	// Setup
	repo := openTestDB(t)
	ctx := context.Background()

	// Act: an unknown name walks in with a password.
	require.NoError(t, repo.Authenticate(ctx, "abigail", "goodwife"))

	// Assert: the account now exists, unbanned and unprivileged.
	u, err := repo.GetUser(ctx, "abigail")
	require.NoError(t, err)
	assert.Equal(t, "abigail", u.Name)
	assert.Equal(t, 0, u.Permission)
	assert.False(t, u.Banned)
	assert.False(t, u.Since.IsZero())
	assert.Empty(t, u.Setups)

	// Assert: the same credentials keep working, wrong ones do not.
	assert.NoError(t, repo.Authenticate(ctx, "abigail", "goodwife"))
	assert.ErrorIs(t, repo.Authenticate(ctx, "abigail", "hexcraft"), ErrBadCredentials)

	// Assert: nobody else was invented along the way.
	_, err = repo.GetUser(ctx, "tituba")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBannedAccountsAreRefusedAtTheDoor(t *testing.T) {
	// Setup: a registered account that later got banned.
	repo := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.Authenticate(ctx, "giles", "morerocks"))
	_, err := repo.db.Exec(`UPDATE users SET banned = 1 WHERE name = ?`, "giles")
	require.NoError(t, err)

	// Assert: the ban wins even over the right password.
	assert.ErrorIs(t, repo.Authenticate(ctx, "giles", "morerocks"), ErrBanned)
	assert.ErrorIs(t, repo.Authenticate(ctx, "giles", "wrong"), ErrBanned)

	u, err := repo.GetUser(ctx, "giles")
	require.NoError(t, err)
	assert.True(t, u.Banned)
}

func TestSaveSetupFillsTheSlots(t *testing.T) {
	// Setup
	repo := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.Authenticate(ctx, "abigail", "goodwife"))

	first := []byte(`{"title":"one wolf in town"}`)
	tenth := []byte(`{"title":"the godless table"}`)

	// Act
	require.NoError(t, repo.SaveSetup("abigail", 3, first))
	require.NoError(t, repo.SaveSetup("abigail", 10, tenth))

	// Assert: only the written slots come back.
	u, err := repo.GetUser(ctx, "abigail")
	require.NoError(t, err)
	assert.Len(t, u.Setups, 2)
	assert.Equal(t, json.RawMessage(first), u.Setups[3])
	assert.Equal(t, json.RawMessage(tenth), u.Setups[10])

	// Act: rewriting a slot replaces it.
	replacement := []byte(`{"title":"second draft"}`)
	require.NoError(t, repo.SaveSetup("abigail", 3, replacement))
	u, err = repo.GetUser(ctx, "abigail")
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(replacement), u.Setups[3])

	// Assert: slots outside 1..10 never touch the table.
	assert.Error(t, repo.SaveSetup("abigail", 0, first))
	assert.Error(t, repo.SaveSetup("abigail", 11, first))
}

func TestArchiveRoundTripsTheTranscript(t *testing.T) {
	// Setup
	db, err := InitSQLite(filepath.Join(t.TempDir(), "salem.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	arch := NewArchive(db, logger.NewNopLogger())
	ctx := context.Background()

	events := []game.RecordedEvent{
		{Type: game.EventPhase, Content: game.Content{"PHASE": "NIGHT"}, To: []string{"Abigail", "Giles"}},
		{Type: game.EventMessage, Content: game.Content{"FROM": "Abigail", "MESSAGE": "who goes there"}, From: "alice", To: []string{"Abigail"}},
		{Type: game.EventDead, Content: game.Content{"cause": "Democracy"}, To: []string{"Giles"}},
	}

	// Act: one decorated match, one bare lobby-titled match.
	arch.StoreMatch(game.MatchRecord{
		RoomID:  4,
		Title:   "The Gallows",
		Private: true,
		Lineup:  map[int]string{1: "Abigail", 2: "Giles", 3: "Tituba", 4: "John", 5: "Mary"},
		Setup: game.Content{
			"title":     "one wolf in town",
			"inventor":  "alice",
			"formation": []string{"Citizen", "Citizen", "Citizen", "Citizen", "Mafioso"},
		},
		Events: events,
	})
	arch.StoreMatch(game.MatchRecord{
		RoomID: 9,
		Title:  "Second Parlor",
		Lineup: map[int]string{1: "Rebecca", 2: "Martha", 3: "Sarah", 4: "Dorothy", 5: "Bridget", 6: "Ann"},
	})
	arch.Close()

	// Assert: both rows landed, newest first, setup title over room title.
	matches, err := arch.Matches(ctx)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Second Parlor", matches[0].Title)
	assert.Equal(t, 9, matches[0].RoomID)
	assert.Equal(t, 6, matches[0].Total)
	assert.Equal(t, "one wolf in town", matches[1].Title)
	assert.Equal(t, 4, matches[1].RoomID)
	assert.Equal(t, 5, matches[1].Total)

	// Assert: the transcript replays in order with contents intact.
	replay, err := arch.MatchEvents(ctx, matches[1].ID)
	require.NoError(t, err)
	require.Len(t, replay, 3)
	for i, ev := range replay {
		assert.Equal(t, events[i].Type, ev.Type, "event %d", i)
		assert.Equal(t, events[i].Content, ev.Content, "event %d", i)
		assert.Equal(t, events[i].From, ev.From, "event %d", i)
		assert.Equal(t, events[i].To, ev.To, "event %d", i)
	}

	// Assert: the bare match archived an empty transcript.
	replay, err = arch.MatchEvents(ctx, matches[0].ID)
	require.NoError(t, err)
	assert.Empty(t, replay)
}
