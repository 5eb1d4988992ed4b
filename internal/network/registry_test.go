package network

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskfall-games/salem/server/internal/game"
	"github.com/duskfall-games/salem/server/internal/platform/logger"
)

// vault records every setup the registry persists.
type vault struct {
	mu    sync.Mutex
	saved []savedSetup
}

type savedSetup struct {
	name string
	slot int
	blob []byte
}

func (v *vault) SaveSetup(name string, slot int, setup []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.saved = append(v.saved, savedSetup{name: name, slot: slot, blob: append([]byte(nil), setup...)})
	return nil
}

func (v *vault) snapshot() []savedSetup {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]savedSetup(nil), v.saved...)
}

// lobby is a registry behind a real websocket endpoint, the same wiring
// the server binary uses: upgrade, WritePump on its own goroutine,
// ReadPump on the handler's.
type lobby struct {
	reg   *Registry
	vault *vault
	srv   *httptest.Server
}

func newLobby(t *testing.T) *lobby {
	t.Helper()
	lob := &lobby{vault: &vault{}}
	lob.reg = NewRegistry(logger.NewNopLogger(), nil, lob.vault, true)
	upgrader := websocket.Upgrader{}
	lob.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(lob.reg, conn, logger.NewNopLogger())
		go client.WritePump()
		client.ReadPump(r.URL.Query().Get("username"))
	}))
	t.Cleanup(func() {
		lob.srv.Close()
		lob.reg.Shutdown()
	})
	return lob
}

// peer is one connected test client. A background reader splits batched
// messages back into frames and keeps them in arrival order.
type peer struct {
	t    *testing.T
	name string
	conn *websocket.Conn

	mu     sync.Mutex
	frames []map[string]any
	closed bool
}

func (l *lobby) dial(t *testing.T, name string) *peer {
	t.Helper()
	addr := "ws" + strings.TrimPrefix(l.srv.URL, "http") + "/game?username=" + name
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	require.NoError(t, err, "dialing as %s", name)
	p := &peer{t: t, name: name, conn: conn}
	t.Cleanup(func() { conn.Close() })
	go p.read()
	return p
}

func (p *peer) read() {
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			p.mu.Lock()
			p.closed = true
			p.mu.Unlock()
			return
		}
		for _, raw := range bytes.Split(data, []byte{'\n'}) {
			var frame map[string]any
			if json.Unmarshal(raw, &frame) != nil {
				continue
			}
			p.mu.Lock()
			p.frames = append(p.frames, frame)
			p.mu.Unlock()
		}
	}
}

func (p *peer) send(msg ClientMessage) {
	p.t.Helper()
	require.NoError(p.t, p.conn.WriteJSON(msg), "%s sending %s", p.name, msg.Type)
}

// ofType returns every received frame of the given type, in order.
func (p *peer) ofType(typ game.EventType) []map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []map[string]any
	for _, f := range p.frames {
		if f["type"] == string(typ) {
			out = append(out, f)
		}
	}
	return out
}

// await blocks until at least one frame of the type arrived and returns
// the latest one.
func (p *peer) await(typ game.EventType) map[string]any {
	p.t.Helper()
	var last map[string]any
	waitFor(p.t, p.name+" receiving "+string(typ), func() bool {
		got := p.ofType(typ)
		if len(got) == 0 {
			return false
		}
		last = got[len(got)-1]
		return true
	})
	return last
}

func (p *peer) awaitClosed() {
	p.t.Helper()
	waitFor(p.t, p.name+" connection closing", func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.closed
	})
}

func nested(t *testing.T, frame map[string]any) map[string]any {
	t.Helper()
	content, ok := frame["content"].(map[string]any)
	require.True(t, ok, "frame %v has no content object", frame)
	return content
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func classicSubmission() game.SetupSubmission {
	return game.SetupSubmission{
		Title:     "one wolf in town",
		Formation: []string{"Citizen", "Citizen", "Citizen", "Citizen", "Mafioso"},
	}
}

func TestHandshakeBriefsTheNewcomer(t *testing.T) {
	// Setup
	lob := newLobby(t)

	// Act: alice signs in first, bob second.
	alice := lob.dial(t, "alice")
	hello := alice.await(game.EventInitialInformation)

	// Assert: the snapshot is a flat frame carrying the whole lobby.
	assert.Equal(t, map[string]any{
		"type":     "INITIAL_INFORMATION",
		"online":   []any{"alice"},
		"rooms":    []any{},
		"username": "alice",
	}, hello)

	bob := lob.dial(t, "bob")
	hello = bob.await(game.EventInitialInformation)

	// Assert: bob sees both names sorted, alice hears the arrival.
	assert.Equal(t, []any{"alice", "bob"}, hello["online"])
	assert.Equal(t, "bob", hello["username"])
	arrival := alice.await(game.EventConnect)
	assert.Equal(t, map[string]any{
		"type":    "CONNECT",
		"content": map[string]any{"username": "bob"},
	}, arrival)
}

func TestSecondLoginDisplacesTheFirst(t *testing.T) {
	// Setup: a bystander, then the contested name.
	lob := newLobby(t)
	watcher := lob.dial(t, "bob")
	watcher.await(game.EventInitialInformation)
	first := lob.dial(t, "alice")
	first.await(game.EventInitialInformation)
	watcher.await(game.EventConnect)

	// Act: the same name signs in again.
	second := lob.dial(t, "alice")
	hello := second.await(game.EventInitialInformation)

	// Assert: the newer login owns the lobby; the name is listed once.
	assert.Equal(t, []any{"alice", "bob"}, hello["online"])

	// Assert: the older socket gets the bare displacement frame and is cut.
	displaced := first.await(game.EventMultipleLogin)
	assert.Equal(t, map[string]any{"type": "multiple"}, displaced)
	first.awaitClosed()

	// Assert: the displaced session slips out silently and the survivor
	// still works. The watcher heard two arrivals and no goodbye.
	second.send(ClientMessage{Type: "CREATE", Title: "After the Storm"})
	second.await(game.EventCreate)
	watcher.await(game.EventNewRoom)
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, watcher.ofType(game.EventDisconnect))
	assert.Len(t, watcher.ofType(game.EventConnect), 2)

	p := first.ofType(game.EventConnect)
	assert.Empty(t, p, "displaced socket has no business hearing arrivals")
}

func TestCreateRoomSeatsTheFounder(t *testing.T) {
	// Setup
	lob := newLobby(t)
	alice := lob.dial(t, "alice")
	bob := lob.dial(t, "bob")
	alice.await(game.EventInitialInformation)
	bob.await(game.EventInitialInformation)

	// Act
	alice.send(ClientMessage{Type: "CREATE", Title: "The Gallows"})

	// Assert: the founder gets the id back and is already seated.
	ack := alice.await(game.EventCreate)
	assert.Equal(t, map[string]any{"CREATED": float64(1)}, nested(t, ack))

	info := nested(t, alice.await(game.EventGameInfo))
	assert.Equal(t, map[string]any{
		"id":        float64(1),
		"title":     "The Gallows",
		"host":      "alice",
		"private":   false,
		"capacity":  float64(15),
		"phase":     "IDLE",
		"members":   []any{"alice"},
		"lineup":    nil,
		"graveyard": nil,
		"setup":     nil,
	}, info)
	seated := alice.ofType(game.EventEnter)
	require.Len(t, seated, 1)
	assert.Equal(t, map[string]any{"who": "alice"}, nested(t, seated[0]))

	// Assert: the whole lobby learns of the room, population included.
	want := map[string]any{
		"id":       float64(1),
		"title":    "The Gallows",
		"host":     "alice",
		"members":  float64(1),
		"capacity": float64(15),
		"phase":    "IDLE",
		"password": false,
	}
	fresh := bob.await(game.EventNewRoom)
	assert.Equal(t, want, fresh["room"])
	status := bob.await(game.EventRoomStatus)
	assert.Equal(t, want, status["status"])

	// Act: a second CREATE from a seated session is dropped.
	alice.send(ClientMessage{Type: "CREATE", Title: "Annex"})
	bob.send(ClientMessage{Type: "CREATE", Title: "Cellar"})
	bob.await(game.EventCreate)

	// Assert: bob's room took the next id; alice's attempt made nothing.
	assert.Equal(t, map[string]any{"CREATED": float64(2)}, nested(t, bob.ofType(game.EventCreate)[0]))
	assert.Len(t, alice.ofType(game.EventCreate), 1)
}

func TestEnterAndLeaveRippleThroughTheLobby(t *testing.T) {
	// Setup: alice hosts, bob and carol watch from the lobby.
	lob := newLobby(t)
	alice := lob.dial(t, "alice")
	bob := lob.dial(t, "bob")
	carol := lob.dial(t, "carol")
	carol.await(game.EventInitialInformation)
	alice.send(ClientMessage{Type: "CREATE", Title: "The Gallows"})
	alice.await(game.EventCreate)
	bob.await(game.EventNewRoom)

	// Act: bob takes a seat.
	bob.send(ClientMessage{Type: "ENTER", RoomID: 1})

	// Assert: bob is briefed, alice sees him walk in, the lobby digest grows.
	briefing := nested(t, bob.await(game.EventGameInfo))
	assert.Equal(t, []any{"alice", "bob"}, briefing["members"])
	walkIn := alice.await(game.EventEnter)
	assert.Equal(t, map[string]any{"who": "bob"}, nested(t, walkIn))
	waitFor(t, "lobby digest reaching two", func() bool {
		got := carol.ofType(game.EventRoomStatus)
		return len(got) > 0 && got[len(got)-1]["status"].(map[string]any)["members"] == float64(2)
	})

	// Act: entering a room that does not exist is dropped, and a seated
	// session cannot enter twice.
	carol.send(ClientMessage{Type: "ENTER", RoomID: 77})
	bob.send(ClientMessage{Type: "ENTER", RoomID: 1})

	// Act: bob leaves, then alice abandons her own room.
	bob.send(ClientMessage{Type: "LEAVE"})
	departure := alice.await(game.EventLeave)
	assert.Equal(t, map[string]any{"who": "bob"}, nested(t, departure))

	alice.send(ClientMessage{Type: "LEAVE"})

	// Assert: the emptied room is torn down for everyone.
	gone := carol.await(game.EventDeletedRoom)
	assert.Equal(t, map[string]any{"type": "DELETED_ROOM", "id": float64(1)}, gone)

	// Assert: a fresh login sees an empty room table again.
	dave := lob.dial(t, "dave")
	hello := dave.await(game.EventInitialInformation)
	assert.Equal(t, []any{}, hello["rooms"])
	assert.Empty(t, carol.ofType(game.EventGameInfo), "carol never got a seat")
}

func TestRoomChatterStaysInTheRoom(t *testing.T) {
	// Setup: two seated players and one stranger in the lobby.
	lob := newLobby(t)
	alice := lob.dial(t, "alice")
	bob := lob.dial(t, "bob")
	carol := lob.dial(t, "carol")
	carol.await(game.EventInitialInformation)
	alice.send(ClientMessage{Type: "CREATE", Title: "The Gallows"})
	alice.await(game.EventCreate)
	bob.send(ClientMessage{Type: "ENTER", RoomID: 1})
	alice.await(game.EventEnter)

	// Act
	bob.send(ClientMessage{Type: "MESSAGE", Text: "good evening"})

	// Assert: both members hear it, the stranger does not.
	said := map[string]any{"FROM": "bob", "MESSAGE": "good evening"}
	assert.Equal(t, said, nested(t, alice.await(game.EventMessage)))
	assert.Equal(t, said, nested(t, bob.await(game.EventMessage)))

	// Act: a stranger's chat and an unroutable type are both dropped,
	// without costing carol her connection.
	carol.send(ClientMessage{Type: "MESSAGE", Text: "let me in"})
	carol.send(ClientMessage{Type: "DANCE"})
	carol.send(ClientMessage{Type: "CREATE", Title: "Waiting Room"})
	ack := carol.await(game.EventCreate)

	// Assert: carol's connection survived and her chat never surfaced.
	assert.Equal(t, map[string]any{"CREATED": float64(2)}, nested(t, ack))
	assert.Len(t, alice.ofType(game.EventMessage), 1)
	assert.Empty(t, carol.ofType(game.EventMessage))
}

func TestSetupSaveSlotsGuardTheVault(t *testing.T) {
	// Setup: alice hosts, bob sits as a guest.
	lob := newLobby(t)
	alice := lob.dial(t, "alice")
	bob := lob.dial(t, "bob")
	alice.await(game.EventInitialInformation)
	alice.send(ClientMessage{Type: "CREATE", Title: "The Gallows"})
	alice.await(game.EventCreate)
	bob.send(ClientMessage{Type: "ENTER", RoomID: 1})
	alice.await(game.EventEnter)

	// Act: a valid setup with a slot in range is applied and persisted.
	alice.send(ClientMessage{Type: "SETUP", Setup: classicSubmission(), SaveSlot: 3})
	applied := nested(t, alice.await(game.EventSetup))

	// Assert
	assert.Equal(t, "one wolf in town", applied["title"])
	assert.Equal(t, "alice", applied["inventor"])
	waitFor(t, "the vault taking the save", func() bool { return len(lob.vault.snapshot()) == 1 })
	rec := lob.vault.snapshot()[0]
	assert.Equal(t, "alice", rec.name)
	assert.Equal(t, 3, rec.slot)
	var stored game.SetupSubmission
	require.NoError(t, json.Unmarshal(rec.blob, &stored))
	assert.Equal(t, classicSubmission().Formation, stored.Formation)

	// Act: slot zero and slots past ten still apply the setup, but
	// nothing more lands in the vault.
	alice.send(ClientMessage{Type: "SETUP", Setup: classicSubmission()})
	alice.send(ClientMessage{Type: "SETUP", Setup: classicSubmission(), SaveSlot: 11})

	// Act: a malformed setup is refused outright, slot or not.
	bad := classicSubmission()
	bad.Formation = []string{"Citizen", "Citizen"}
	alice.send(ClientMessage{Type: "SETUP", Setup: bad, SaveSlot: 2})
	refusal := nested(t, alice.await(game.EventError))

	// Assert: three applications went out, one save went in.
	assert.Equal(t, "a setup seats 5 to 15 players, not 2", refusal["REASON"])
	waitFor(t, "all three broadcasts", func() bool { return len(alice.ofType(game.EventSetup)) == 3 })
	assert.Len(t, lob.vault.snapshot(), 1)

	// Act: a guest pitching a setup is ignored entirely.
	bob.send(ClientMessage{Type: "SETUP", Setup: classicSubmission(), SaveSlot: 1})
	bob.send(ClientMessage{Type: "MESSAGE", Text: "did it take?"})
	bob.await(game.EventMessage)

	// Assert
	assert.Len(t, alice.ofType(game.EventSetup), 3)
	assert.Len(t, lob.vault.snapshot(), 1)
}

func TestGoodbyeTravelsTheLobby(t *testing.T) {
	// Setup: bob hosts a room of one.
	lob := newLobby(t)
	alice := lob.dial(t, "alice")
	bob := lob.dial(t, "bob")
	alice.await(game.EventInitialInformation)
	bob.send(ClientMessage{Type: "CREATE", Title: "Short Stay"})
	bob.await(game.EventCreate)
	alice.await(game.EventNewRoom)

	// Act: bob's connection drops.
	bob.conn.Close()

	// Assert: his seat is vacated, the empty room is torn down, and the
	// lobby hears the goodbye.
	gone := alice.await(game.EventDeletedRoom)
	assert.Equal(t, float64(1), gone["id"])
	goodbye := alice.await(game.EventDisconnect)
	assert.Equal(t, map[string]any{"username": "bob"}, nested(t, goodbye))
	statuses := alice.ofType(game.EventRoomStatus)
	require.NotEmpty(t, statuses)
	last := statuses[len(statuses)-1]["status"].(map[string]any)
	assert.Equal(t, float64(0), last["members"])

	// Assert: a fresh login sees one name online and no rooms.
	carol := lob.dial(t, "carol")
	hello := carol.await(game.EventInitialInformation)
	assert.Equal(t, []any{"alice", "carol"}, hello["online"])
	assert.Equal(t, []any{}, hello["rooms"])
}
