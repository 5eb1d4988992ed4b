package game

import (
	"math/rand"
	"strings"
	"time"

	"github.com/duskfall-games/salem/server/internal/platform/logger"
	"github.com/duskfall-games/salem/server/internal/platform/metrics"
)

// victory pairs a winner with the role they won as. Conversions after the
// win keep the credited role intact.
type victory struct {
	player *Player
	role   *Role
}

// chatGroups orders the team channels. Membership walks it front to back,
// so a role carrying several masks lands in the first matching channel.
var chatGroups = []Team{TeamMafia, TeamTriad, TeamMason, TeamCult, TeamSpy}

// RoomStatus is the lobby digest pushed whenever a room's membership or
// phase changes.
type RoomStatus struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Host       string `json:"host"`
	Population int    `json:"members"`
	Capacity   int    `json:"capacity"`
	Phase      string `json:"phase"`
	Locked     bool   `json:"password"`
}

// RoomConfig carries everything a room needs at birth. Clock, Timing and
// Rand exist so tests can run a whole match in microseconds.
type RoomConfig struct {
	ID       int
	Title    string
	Capacity int
	Password string
	Host     *Session

	Debug bool

	Log      *logger.Logger
	Clock    Clock
	Timing   Timing
	Rand     *rand.Rand
	Archive  ArchiveSink
	OnStatus func(RoomStatus)
}

// Room is one game room: a lobby between matches and the whole running
// match during one. All of its state belongs to a single goroutine that
// pumps cmds; the match script runs inline on that goroutine and keeps
// pumping while it sleeps, so commands stay live mid-phase. Nothing here
// is safe to touch from outside except Do, Post and Close.
type Room struct {
	ID       int
	Title    string
	Capacity int
	Password string

	host    *Session
	members []*Session
	setup   *Setup

	log      *logger.Logger
	clock    Clock
	timing   Timing
	rng      *rand.Rand
	mx       *metrics.Collector
	archive  ArchiveSink
	onStatus func(RoomStatus)
	debug    bool

	cmds chan func()
	quit chan struct{}
	done chan struct{}

	// startRequested latches the host's begin command so a second begin
	// cannot double-start the match script.
	startRequested bool

	// Match state below resets in initGame and is only meaningful while
	// phase != PhaseIdle.
	phase     Phase
	day       int
	formation []RoleID
	lineup    []*Player
	nicknames map[*Session]string

	hell          []*Session
	leavers       []*Player
	deadLastNight []*Player
	jailQueue     []*Player
	privateChat   map[Team][]*Player
	graveyard     []*Player
	winners       []victory
	executed      []*Player
	suiciders     []suicide
	actorsToday   []*Player

	skipVotes        int
	election         bool
	elected          *Player
	inCourt          bool
	inLynch          bool
	mayorRevealToday bool

	transcript transcript
}

// suicide is one queued forced death for the next night: a lost Jester
// juror, a Counsel who watched their client hang, or a /suicide request.
type suicide struct {
	who   *Player
	cause string
}

// NewRoom builds a room and starts its command pump. The caller owns the
// returned handle; all interaction goes through Do, Post and Close.
func NewRoom(cfg RoomConfig) *Room {
	r := &Room{
		ID:       cfg.ID,
		Title:    trimTitle(cfg.Title),
		Capacity: cfg.Capacity,
		Password: trimPassword(cfg.Password),

		log:      cfg.Log,
		clock:    cfg.Clock,
		timing:   cfg.Timing,
		rng:      cfg.Rand,
		mx:       metrics.Get(),
		archive:  cfg.Archive,
		onStatus: cfg.OnStatus,
		debug:    cfg.Debug,

		cmds:  make(chan func(), 256),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
		phase: PhaseIdle,
	}
	if r.log == nil {
		r.log = logger.NewNopLogger()
	}
	if r.clock == nil {
		r.clock = RealClock()
	}
	if r.timing.Table == nil {
		if cfg.Debug {
			r.timing = DebugTiming()
		} else {
			r.timing = ProductionTiming()
		}
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Host != nil {
		r.host = cfg.Host
	}
	go r.run()
	return r
}

// trimTitle caps a room title at 16 runes.
func trimTitle(title string) string {
	runes := []rune(title)
	if len(runes) > 16 {
		runes = runes[:16]
	}
	return strings.TrimSpace(string(runes))
}

// trimPassword caps a room password at 8 runes. Empty means public.
func trimPassword(pw string) string {
	runes := []rune(pw)
	if len(runes) > 8 {
		runes = runes[:8]
	}
	return string(runes)
}

// run pumps commands until Close. While a match script is in flight this
// loop is parked inside fn(); pause and waitVote take over the pumping.
func (r *Room) run() {
	defer close(r.done)
	for {
		select {
		case fn := <-r.cmds:
			fn()
		case <-r.quit:
			return
		}
	}
}

// Post hands fn to the room goroutine and returns immediately.
func (r *Room) Post(fn func()) {
	select {
	case r.cmds <- fn:
	case <-r.quit:
	}
}

// Do runs fn on the room goroutine and waits for it. Never call it from
// the room goroutine itself.
func (r *Room) Do(fn func()) {
	ran := make(chan struct{})
	r.Post(func() {
		fn()
		close(ran)
	})
	select {
	case <-ran:
	case <-r.done:
	}
}

// Close tears the room down. A match still in flight sees every pause
// return immediately and winds itself down against an empty audience.
func (r *Room) Close() {
	select {
	case <-r.quit:
	default:
		close(r.quit)
	}
}

// closed reports whether Close has been called.
func (r *Room) closed() bool {
	select {
	case <-r.quit:
		return true
	default:
		return false
	}
}

// pause sleeps for d on the room goroutine while keeping commands live.
// Room state may change under the caller across a pause; that is the
// point.
func (r *Room) pause(d time.Duration) {
	if d <= 0 || r.closed() {
		return
	}
	wake := r.clock.After(d)
	for {
		select {
		case fn := <-r.cmds:
			fn()
		case <-wake:
			return
		case <-r.quit:
			return
		}
	}
}

// countdown runs a phase timer, announcing the time left at the usual
// marks. The final mark is silent; the phase change right after it is the
// announcement.
func (r *Room) countdown(of Phase, d time.Duration) {
	for _, mark := range countdownMarks {
		if d <= mark {
			continue
		}
		r.pause(d - mark)
		if r.closed() {
			return
		}
		if mark > 0 {
			r.emit(newEvent(EventTime, Content{
				"PHASE": string(of),
				"TIME":  int(mark / time.Second),
			}, r.audience()...))
		}
		d = mark
	}
}

// waitVote pumps commands until a ballot reaches a majority or the budget
// runs out, announcing countdown marks along the way. It reports the
// unspent budget and whether a majority fired.
func (r *Room) waitVote(budget time.Duration) (time.Duration, bool) {
	remaining := budget
	for _, mark := range countdownMarks {
		if remaining <= mark {
			continue
		}
		began := r.clock.Now()
		wake := r.clock.After(remaining - mark)
		slept := false
		for !r.election && !slept {
			select {
			case fn := <-r.cmds:
				fn()
			case <-wake:
				slept = true
			case <-r.quit:
				return 0, false
			}
		}
		if r.election {
			left := remaining - r.clock.Now().Sub(began)
			if left < 0 {
				left = 0
			}
			return left, true
		}
		remaining = mark
		if mark > 0 {
			r.emit(newEvent(EventTime, Content{
				"PHASE": string(PhaseVote),
				"TIME":  int(mark / time.Second),
			}, r.audience()...))
		}
	}
	return 0, false
}

// turnPhase enters a phase and announces it. The elected seat rides along
// so late deliveries can restore trial context.
func (r *Room) turnPhase(into Phase) {
	r.phase = into
	var who any
	if r.inGame() && into != PhaseInitiating && r.elected != nil {
		who = r.elected.Index
	}
	r.emit(&Event{
		Type:     EventPhase,
		Content:  Content{"PHASE": string(into), "WHO": who},
		To:       r.audience(),
		NoRecord: into == PhaseInitiating || into == PhaseIdle,
	})
	r.statusChanged()
}

// emit records an event to the running match's transcript, then fans it
// out exactly as addressed. Deciding who hears what is entirely the
// caller's job.
func (r *Room) emit(e *Event) {
	if r.inGame() && !e.NoRecord {
		r.transcript.add(r.clock.Now(), e)
	}
	for _, l := range e.To {
		l.receive(e.Type, e.Content)
	}
	r.mx.EventsEmitted.Inc()
}

// audience is everyone in the room, players and spectators alike.
func (r *Room) audience() []Listener {
	return sessionListeners(r.members)
}

func (r *Room) inGame() bool { return r.phase != PhaseIdle }

func (r *Room) full() bool { return len(r.members) >= r.Capacity }

func (r *Room) empty() bool { return len(r.members) == 0 }

// remaining lists the live seats in lineup order.
func (r *Room) remaining() []*Player {
	var out []*Player
	for _, p := range r.lineup {
		if p.alive() {
			out = append(out, p)
		}
	}
	return out
}

// playerByIndex resolves a seat number, 1-based. Unknown numbers are nil.
func (r *Room) playerByIndex(index int) *Player {
	if index < 1 || index > len(r.lineup) {
		return nil
	}
	return r.lineup[index-1]
}

func (r *Room) inGraveyard(p *Player) bool {
	for _, dead := range r.graveyard {
		if dead == p {
			return true
		}
	}
	return false
}

// dropFromHell removes a spectator from the dead chat.
func (r *Room) dropFromHell(s *Session) {
	for i, m := range r.hell {
		if m == s {
			r.hell = append(r.hell[:i], r.hell[i+1:]...)
			return
		}
	}
}

// submitNickname stores a pick during the selection window and announces
// it without naming whose it is.
func (r *Room) submitNickname(s *Session, nickname string) {
	r.nicknames[s] = nickname
	r.emit(newEvent(EventNicknameConfirmed, Content{"nickname": nickname}, r.audience()...))
}

// queueSuicide schedules a forced death for the coming night. A player
// already owing the same death is not queued twice; the vote loop settles
// its ballots once per round and would requeue a Counsel otherwise.
func (r *Room) queueSuicide(p *Player, cause string) {
	for _, s := range r.suiciders {
		if s.who == p && s.cause == cause {
			return
		}
	}
	r.suiciders = append(r.suiciders, suicide{who: p, cause: cause})
}

// status is the lobby digest for this room.
func (r *Room) status() RoomStatus {
	host := ""
	if r.host != nil {
		host = r.host.Name
	}
	return RoomStatus{
		ID:         r.ID,
		Title:      r.Title,
		Host:       host,
		Population: len(r.members),
		Capacity:   r.Capacity,
		Phase:      string(r.phase),
		Locked:     r.Password != "",
	}
}

// statusChanged pushes the digest to the lobby, if anyone is listening.
func (r *Room) statusChanged() {
	if r.onStatus != nil {
		r.onStatus(r.status())
	}
}

// ingameInfo is the full room snapshot a newcomer gets on entry. Lineup
// and graveyard only exist mid-match.
func (r *Room) ingameInfo() Content {
	host := ""
	if r.host != nil {
		host = r.host.Name
	}
	names := make([]string, len(r.members))
	for i, m := range r.members {
		names[i] = m.Name
	}
	info := Content{
		"id":        r.ID,
		"title":     r.Title,
		"host":      host,
		"private":   r.Password != "",
		"capacity":  r.Capacity,
		"phase":     string(r.phase),
		"members":   names,
		"lineup":    nil,
		"graveyard": nil,
	}
	if r.setup != nil {
		info["setup"] = r.setup.describe()
	} else {
		info["setup"] = nil
	}
	if r.inGame() {
		lineup := make(map[int]string, len(r.lineup))
		for _, p := range r.lineup {
			lineup[p.Index] = p.Nickname
		}
		indices := make([]int, len(r.graveyard))
		for i, dead := range r.graveyard {
			indices[i] = dead.Index
		}
		info["lineup"] = lineup
		info["graveyard"] = indices
	}
	return info
}
