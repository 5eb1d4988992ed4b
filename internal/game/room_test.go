package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskfall-games/salem/server/internal/platform/logger"
)

func TestEnterBriefsTheNewcomer(t *testing.T) {
	// Setup
	tbl := newMatchTable(t, 3)

	// Assert: the last arrival got the full snapshot of an idle room.
	infos := tbl.probes[2].ofType(EventGameInfo)
	require.Len(t, infos, 1)
	info := infos[0]
	assert.Equal(t, 1, info["id"])
	assert.Equal(t, "Proving Grounds", info["title"])
	assert.Equal(t, "user1", info["host"])
	assert.Equal(t, false, info["private"])
	assert.Equal(t, 15, info["capacity"])
	assert.Equal(t, "IDLE", info["phase"])
	assert.Equal(t, []string{"user1", "user2", "user3"}, info["members"])
	assert.Nil(t, info["setup"])
	assert.Nil(t, info["lineup"])
	assert.Nil(t, info["graveyard"])

	// Assert: every arrival was announced, the first to an audience of one.
	assert.Equal(t, []Content{
		{"who": "user1"}, {"who": "user2"}, {"who": "user3"},
	}, tbl.probes[0].ofType(EventEnter))

	// Act: with a setup installed, the next arrival hears about it too.
	require.True(t, tbl.room.ApplySetup(tbl.users[0], classicFive()))
	late := NewSession("session-4", "user4", &probe{})
	require.True(t, tbl.room.Enter(late))
	infos = late.sink.(*probe).ofType(EventGameInfo)
	require.Len(t, infos, 1)
	setup, ok := infos[0]["setup"].(Content)
	require.True(t, ok)
	assert.Equal(t, "one wolf in town", setup["title"])
}

func TestRoomTurnsAwayTheOverflow(t *testing.T) {
	// Setup: a two-seat room.
	alice := NewSession("session-a", "alice", &probe{})
	bob := NewSession("session-b", "bob", &probe{})
	carol := NewSession("session-c", "carol", &probe{})
	room := NewRoom(RoomConfig{
		ID:       9,
		Title:    "Two Chairs",
		Capacity: 2,
		Host:     alice,
		Log:      logger.NewNopLogger(),
		Clock:    snapClock{},
		Timing:   DebugTiming(),
	})
	t.Cleanup(room.Close)

	// Act / Assert: the third chair does not exist.
	require.True(t, room.Enter(alice))
	require.True(t, room.Enter(bob))
	assert.False(t, room.Enter(carol))

	// Act / Assert: a seat freed is a seat offered.
	assert.False(t, room.Leave(alice))
	assert.True(t, room.Enter(carol))
}

func TestHostHandsOffWhenLeaving(t *testing.T) {
	// Setup
	tbl := newMatchTable(t, 3)

	// Act: the host walks out of an idle room.
	emptied := tbl.room.Leave(tbl.users[0])

	// Assert: the room stays open, the leaver is announced to those left
	// behind, and the oldest member inherits the keys.
	assert.False(t, emptied)
	assert.Equal(t, []Content{{"who": "user1"}}, tbl.probes[1].ofType(EventLeave))
	assert.Empty(t, tbl.probes[0].ofType(EventLeave))
	assert.True(t, tbl.room.ApplySetup(tbl.users[1], classicFive()))
	assert.False(t, tbl.room.ApplySetup(tbl.users[0], classicFive()))

	// Act / Assert: the room reports empty only when the last one leaves.
	assert.False(t, tbl.room.Leave(tbl.users[1]))
	assert.True(t, tbl.room.Leave(tbl.users[2]))
}

func TestLobbyTalkSkipsTheSlashNoise(t *testing.T) {
	// Setup
	tbl := newMatchTable(t, 2)

	// Act: ragged whitespace, an unknown command, a plain goodbye.
	tbl.room.Say(tbl.users[0], "  well   hello\tthere  ")
	tbl.room.Say(tbl.users[0], "/dance")
	tbl.room.Say(tbl.users[0], "goodnight")

	// Assert: two messages arrive cleaned up; the command vanished.
	waitUntil(t, "the goodnight message", func() bool {
		return tbl.probes[1].has(EventMessage, func(c Content) bool {
			return c["MESSAGE"] == "goodnight"
		})
	})
	assert.Equal(t, []Content{
		{"FROM": "user1", "MESSAGE": "well hello there"},
		{"FROM": "user1", "MESSAGE": "goodnight"},
	}, tbl.probes[1].ofType(EventMessage))
}

func TestLateArrivalsWatchFromHell(t *testing.T) {
	// Setup: a match with no voters runs forever; nobody dies.
	tbl := newMatchTable(t, 5)
	tbl.apply(t, classicFive())
	tbl.begin()
	tbl.waitPhase(t, PhaseEvening)

	// Act: a sixth account walks in mid-match.
	ghost := &probe{}
	late := NewSession("session-6", "user6", ghost)
	require.True(t, tbl.room.Enter(late))

	// Assert: the snapshot carries the board and an empty graveyard.
	infos := ghost.ofType(EventGameInfo)
	require.Len(t, infos, 1)
	assert.Equal(t, []string{"user1", "user2", "user3", "user4", "user5", "user6"},
		infos[0]["members"])
	assert.Equal(t, map[int]string{
		1: "Anonymous1", 2: "Anonymous2", 3: "Anonymous3", 4: "Anonymous4", 5: "Anonymous5",
	}, infos[0]["lineup"])
	assert.Equal(t, []int{}, infos[0]["graveyard"])

	// Act: the newcomer speaks; only hell hears it.
	tbl.room.Say(late, "anyone here")
	waitUntil(t, "the hell chat line", func() bool {
		return ghost.has(EventMessage, func(c Content) bool {
			return c["MESSAGE"] == "anyone here"
		})
	})
	assert.Equal(t, []Content{
		{"FROM": "user6", "MESSAGE": "anyone here", "hell": true},
	}, ghost.ofType(EventMessage))
	assert.False(t, tbl.probes[0].has(EventMessage, func(c Content) bool {
		return c["MESSAGE"] == "anyone here"
	}))
}

func TestTranscriptKeepsOneRowPerEmission(t *testing.T) {
	// Setup
	tbl := newMatchTable(t, 2)
	room := tbl.room

	// Act: one line before any match, three emissions while a phase is on,
	// one after the room went idle again.
	room.Do(func() {
		room.emit(newEvent(EventMessage, Content{"FROM": "user1", "MESSAGE": "lobby talk"}, tbl.users[0]))
		room.phase = PhaseDiscussion
		room.emit(&Event{
			Type:    EventMessage,
			Content: Content{"FROM": "user1", "MESSAGE": "day talk"},
			To:      room.audience(),
			From:    "user1",
		})
		room.emit(&Event{
			Type:     EventTime,
			Content:  Content{"PHASE": "DISCUSSION", "TIME": 5},
			To:       room.audience(),
			NoRecord: true,
		})
		room.emit(newEvent(EventDead, Content{"cause": "Democracy"}, tbl.users[1]))
		room.phase = PhaseIdle
		room.emit(newEvent(EventMessage, Content{"FROM": "user1", "MESSAGE": "postgame"}, tbl.users[0]))
	})

	// Assert: exactly the two on-record in-game emissions made the book,
	// in emission order, recipients named by account.
	rows := room.Transcript()
	require.Len(t, rows, 2)
	assert.Equal(t, EventMessage, rows[0].Type)
	assert.Equal(t, Content{"FROM": "user1", "MESSAGE": "day talk"}, rows[0].Content)
	assert.Equal(t, "user1", rows[0].From)
	assert.Equal(t, []string{"user1", "user2"}, rows[0].To)
	assert.False(t, rows[0].Time.IsZero())
	assert.Equal(t, EventDead, rows[1].Type)
	assert.Equal(t, []string{"user2"}, rows[1].To)

	// Assert: recording never filtered delivery.
	assert.Len(t, tbl.probes[0].ofType(EventMessage), 3)
	assert.Len(t, tbl.probes[0].ofType(EventTime), 1)
	assert.Len(t, tbl.probes[1].ofType(EventDead), 1)
}

func TestMessageSanitizer(t *testing.T) {
	assert.Equal(t, strings.Repeat("a", 128), sanitizeMessage(strings.Repeat("a", 200)))
	assert.Equal(t, "a b c", sanitizeMessage(" a \t b\n\nc "))
	assert.Equal(t, "", sanitizeMessage("   \t  "))
	assert.Equal(t, "unchanged", sanitizeMessage("unchanged"))
}

func TestNicknameRules(t *testing.T) {
	for nickname, legal := range map[string]bool{
		"Abigail":   true,
		"A1":        true,
		"12345678":  true,
		"émile":     true,
		"":          false,
		"ninechars": false,
		"a b":       false,
		"user_1":    false,
	} {
		assert.Equal(t, legal, validNickname(nickname), "nickname %q", nickname)
	}
}

func TestTitleAndPasswordLimits(t *testing.T) {
	assert.Equal(t, strings.Repeat("x", 16), trimTitle(strings.Repeat("x", 20)))
	assert.Equal(t, "123456789012345", trimTitle("123456789012345 x"))
	assert.Equal(t, "short", trimTitle("short   "))
	assert.Equal(t, strings.Repeat("p", 8), trimPassword(strings.Repeat("p", 12)))
	assert.Equal(t, " spacey ", trimPassword(" spacey "))
}

func TestDeathTollWording(t *testing.T) {
	for _, tc := range []struct {
		dead, standing int
		word           string
	}{
		{1, 4, "one"},
		{2, 3, "some"},
		{3, 2, "some"},
		{4, 5, "many"},
		{5, 1, "many"},
		{6, 2, "toomany"},
		{7, 1, "toomany"},
		{9, 1, "most"},
		{2, 0, "all"},
	} {
		assert.Equal(t, tc.word, deathToll(tc.dead, tc.standing),
			"%d dead with %d standing", tc.dead, tc.standing)
	}
}
