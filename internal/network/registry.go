package network

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/duskfall-games/salem/server/internal/game"
	"github.com/duskfall-games/salem/server/internal/platform/logger"
	"github.com/duskfall-games/salem/server/internal/platform/metrics"
)

const (
	// Every room seats the same head count.
	roomCapacity = 15
	// Setup save slots per user.
	saveSlots = 10
)

// SetupSaver persists a validated setup into one of a user's save slots.
type SetupSaver interface {
	SaveSetup(name string, slot int, setup []byte) error
}

// connection pairs a session with the client that owns its sink.
type connection struct {
	session *game.Session
	client  *Client
}

// Registry owns the online set and the room table. Lobby traffic goes
// straight to client sinks; room traffic crosses into the room goroutine
// through the game package's gateway. The mutex is never held across a
// gateway call, because rooms call back into the registry on status
// changes.
type Registry struct {
	log     *logger.Logger
	mx      *metrics.Collector
	archive game.ArchiveSink
	setups  SetupSaver
	debug   bool

	mu       sync.Mutex
	online   map[string]*connection
	rooms    map[int]*game.Room
	statuses map[int]game.RoomStatus
	seats    map[*game.Session]*game.Room
	nextRoom int
}

// NewRegistry wires the lobby. archive and setups may be nil; rooms then
// play unarchived and save slots are ignored.
func NewRegistry(log *logger.Logger, archive game.ArchiveSink, setups SetupSaver, debug bool) *Registry {
	return &Registry{
		log:      log,
		mx:       metrics.Get(),
		archive:  archive,
		setups:   setups,
		debug:    debug,
		online:   make(map[string]*connection),
		rooms:    make(map[int]*game.Room),
		statuses: make(map[int]game.RoomStatus),
		seats:    make(map[*game.Session]*game.Room),
	}
}

// Connect signs an identity in. A previous session under the same name is
// told it has been displaced, pulled out of its room and cut off; the
// newer login wins. The newcomer receives the lobby snapshot and everyone
// else hears the arrival.
func (reg *Registry) Connect(identity string, c *Client) *game.Session {
	session := game.NewSession(ulid.Make().String(), identity, c)

	reg.mu.Lock()
	displaced := reg.online[identity]
	reg.online[identity] = &connection{session: session, client: c}
	reg.mx.SessionsOnline.Set(float64(len(reg.online)))
	names := make([]string, 0, len(reg.online))
	for name := range reg.online {
		names = append(names, name)
	}
	sort.Strings(names)
	rooms := make([]game.RoomStatus, 0, len(reg.statuses))
	for _, st := range reg.statuses {
		rooms = append(rooms, st)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	others := reg.sinksLocked(session)
	reg.mu.Unlock()

	if displaced != nil {
		reg.log.Warnf("duplicate login: %s displaces session %s", identity, displaced.session.ID)
		displaced.client.Deliver(game.EventMultipleLogin, nil)
		if room := reg.seatOf(displaced.session); room != nil {
			reg.leaveRoom(displaced.session, room)
		}
		displaced.client.shutdown()
	}

	c.Deliver(game.EventInitialInformation, game.Content{
		"online":   names,
		"rooms":    rooms,
		"username": identity,
	})
	for _, sink := range others {
		sink.Deliver(game.EventConnect, game.Content{"username": identity})
	}
	reg.log.Infof("connected: %s (session %s)", identity, session.ID)
	return session
}

// Disconnect signs a session out, vacating its seat first. A session that
// was displaced by a newer login slips out without a goodbye; the name is
// still online.
func (reg *Registry) Disconnect(session *game.Session) {
	if room := reg.seatOf(session); room != nil {
		reg.leaveRoom(session, room)
	}

	reg.mu.Lock()
	entry := reg.online[session.Name]
	displaced := entry == nil || entry.session != session
	if !displaced {
		delete(reg.online, session.Name)
		reg.mx.SessionsOnline.Set(float64(len(reg.online)))
	}
	sinks := reg.sinksLocked(nil)
	reg.mu.Unlock()

	if displaced {
		return
	}
	for _, sink := range sinks {
		sink.Deliver(game.EventDisconnect, game.Content{"username": session.Name})
	}
	reg.log.Infof("disconnected: %s (session %s)", session.Name, session.ID)
}

// Dispatch routes one client frame. Precondition violations and unknown
// types are dropped; the sender learns nothing.
func (reg *Registry) Dispatch(session *game.Session, msg ClientMessage) {
	reg.mx.MessagesIn.Inc()
	switch game.EventType(msg.Type) {
	case game.EventCreate:
		reg.createRoom(session, msg)
	case game.EventEnter:
		reg.enterRoom(session, msg.RoomID)
	case game.EventLeave:
		if room := reg.seatOf(session); room != nil {
			reg.leaveRoom(session, room)
		}
	case game.EventMessage:
		if room := reg.seatOf(session); room != nil {
			room.Say(session, msg.Text)
		}
	case game.EventSetup:
		reg.applySetup(session, msg)
	default:
		reg.log.Warnf("session %s: unroutable %q frame", session.ID, msg.Type)
	}
}

func (reg *Registry) createRoom(session *game.Session, msg ClientMessage) {
	if msg.Title == "" || reg.seatOf(session) != nil {
		return
	}

	reg.mu.Lock()
	reg.nextRoom++
	id := reg.nextRoom
	room := game.NewRoom(game.RoomConfig{
		ID:       id,
		Title:    msg.Title,
		Capacity: roomCapacity,
		Password: msg.Password,
		Host:     session,
		Debug:    reg.debug,
		Log:      reg.log,
		Archive:  reg.archive,
		OnStatus: reg.onRoomStatus,
	})
	reg.rooms[id] = room
	reg.statuses[id] = game.RoomStatus{
		ID:       id,
		Title:    room.Title,
		Host:     session.Name,
		Capacity: room.Capacity,
		Phase:    string(game.PhaseIdle),
		Locked:   room.Password != "",
	}
	reg.mx.RoomsOpen.Set(float64(len(reg.rooms)))
	client := reg.clientOfLocked(session)
	reg.mu.Unlock()

	reg.log.Infof("%s creates room %d (%s)", session.Name, id, room.Title)
	if client != nil {
		client.Deliver(game.EventCreate, game.Content{"CREATED": id})
	}
	if room.Enter(session) {
		reg.mu.Lock()
		reg.seats[session] = room
		reg.mu.Unlock()
	}

	reg.mu.Lock()
	st := reg.statuses[id]
	sinks := reg.sinksLocked(nil)
	reg.mu.Unlock()
	for _, sink := range sinks {
		sink.Deliver(game.EventNewRoom, game.Content{"room": st})
	}
}

func (reg *Registry) enterRoom(session *game.Session, id int) {
	if reg.seatOf(session) != nil {
		return
	}
	reg.mu.Lock()
	room := reg.rooms[id]
	reg.mu.Unlock()
	if room == nil {
		return
	}
	if !room.Enter(session) {
		return
	}
	reg.mu.Lock()
	if reg.rooms[id] == room {
		reg.seats[session] = room
		reg.mu.Unlock()
		return
	}
	reg.mu.Unlock()
	// The room emptied and was torn down while we were being seated.
	room.Leave(session)
}

// leaveRoom vacates the seat and tears the room down if that left it
// empty. Reentrant across goroutines: only the caller that owned the
// seat entry proceeds past the first gate, and only the one that owned
// the table entry tears down.
func (reg *Registry) leaveRoom(session *game.Session, room *game.Room) {
	reg.mu.Lock()
	if reg.seats[session] != room {
		reg.mu.Unlock()
		return
	}
	delete(reg.seats, session)
	reg.mu.Unlock()

	if !room.Leave(session) {
		return
	}

	reg.mu.Lock()
	if reg.rooms[room.ID] != room {
		reg.mu.Unlock()
		return
	}
	delete(reg.rooms, room.ID)
	delete(reg.statuses, room.ID)
	reg.mx.RoomsOpen.Set(float64(len(reg.rooms)))
	sinks := reg.sinksLocked(nil)
	reg.mu.Unlock()

	room.Close()
	for _, sink := range sinks {
		sink.Deliver(game.EventDeletedRoom, game.Content{"id": room.ID})
	}
	reg.log.Infof("room %d deleted: empty", room.ID)
}

func (reg *Registry) applySetup(session *game.Session, msg ClientMessage) {
	room := reg.seatOf(session)
	if room == nil {
		return
	}
	if !room.ApplySetup(session, msg.Setup) {
		return
	}
	if reg.setups == nil || msg.SaveSlot < 1 || msg.SaveSlot > saveSlots {
		return
	}
	blob, err := json.Marshal(msg.Setup)
	if err != nil {
		reg.log.Errorf("encoding setup for %s slot %d: %v", session.Name, msg.SaveSlot, err)
		return
	}
	if err := reg.setups.SaveSetup(session.Name, msg.SaveSlot, blob); err != nil {
		reg.log.Errorf("saving setup for %s slot %d: %v", session.Name, msg.SaveSlot, err)
	}
}

// onRoomStatus runs on a room goroutine whenever that room's digest
// changes. Rooms already torn down stay silent.
func (reg *Registry) onRoomStatus(st game.RoomStatus) {
	reg.mu.Lock()
	if _, ok := reg.rooms[st.ID]; !ok {
		reg.mu.Unlock()
		return
	}
	reg.statuses[st.ID] = st
	sinks := reg.sinksLocked(nil)
	reg.mu.Unlock()
	for _, sink := range sinks {
		sink.Deliver(game.EventRoomStatus, game.Content{"status": st})
	}
}

// seatOf returns the room this registry has the session seated in.
func (reg *Registry) seatOf(session *game.Session) *game.Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.seats[session]
}

func (reg *Registry) clientOfLocked(session *game.Session) *Client {
	if entry := reg.online[session.Name]; entry != nil && entry.session == session {
		return entry.client
	}
	return nil
}

// sinksLocked snapshots every online sink except skip's. Callers hold mu;
// delivery happens after release.
func (reg *Registry) sinksLocked(skip *game.Session) []*Client {
	out := make([]*Client, 0, len(reg.online))
	for _, entry := range reg.online {
		if entry.session == skip {
			continue
		}
		out = append(out, entry.client)
	}
	return out
}

// Shutdown closes every room and cuts every client off. Runs after the
// HTTP server has stopped accepting upgrades.
func (reg *Registry) Shutdown() {
	reg.mu.Lock()
	rooms := make([]*game.Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	clients := make([]*Client, 0, len(reg.online))
	for _, entry := range reg.online {
		clients = append(clients, entry.client)
	}
	reg.mu.Unlock()

	for _, room := range rooms {
		room.Close()
	}
	for _, client := range clients {
		client.shutdown()
	}
}
