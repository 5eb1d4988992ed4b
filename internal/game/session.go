package game

import (
	"strings"
	"unicode"
)

// Sink is one connection's outbound leg. Deliveries must not block the room;
// implementations buffer and drop slow consumers.
type Sink interface {
	Deliver(typ EventType, content Content)
}

// Session is one signed-in account: the identity events are recorded under
// and the pipe they are delivered through. A Session joins rooms and, during
// a match, owns at most one seat.
type Session struct {
	ID   string
	Name string

	sink Sink

	// room and player belong to the room goroutine once seated. The
	// dispatcher routes by its own table, never by these.
	room   *Room
	player *Player
}

func NewSession(id, name string, sink Sink) *Session {
	return &Session{ID: id, Name: name, sink: sink}
}

func (s *Session) receive(typ EventType, content Content) {
	s.sink.Deliver(typ, content)
}

func (s *Session) recordName() string { return s.Name }

// enter seats the session in the room. Mid-match arrivals watch from hell.
func (s *Session) enter(r *Room) {
	s.room = r
	r.members = append(r.members, s)
	if r.inGame() {
		r.hell = append(r.hell, s)
	}
	r.emit(newEvent(EventGameInfo, r.ingameInfo(), s))
	r.emit(newEvent(EventEnter, Content{"who": s.Name}, r.audience()...))
	r.statusChanged()
}

// leave abandons the room. A live seat becomes a deserter the next night
// puts down; a dead seat just slips out of hell.
func (s *Session) leave() {
	r := s.room
	for i, m := range r.members {
		if m == s {
			r.members = append(r.members[:i], r.members[i+1:]...)
			break
		}
	}
	if s == r.host && len(r.members) > 0 {
		r.host = r.members[0]
		r.log.Infof("room %d: host handed to %s", r.ID, r.host.Name)
	}
	if p := s.player; p != nil {
		if p.alive() {
			r.log.Warnf("room %d: %s deserted a live seat", r.ID, s.Name)
			r.leavers = append(r.leavers, p)
			r.emit(newEvent(EventLeave, Content{"index": p.Index}, r.audience()...))
		} else {
			r.dropFromHell(s)
		}
		p.HasLeft = true
		s.player = nil
	} else {
		r.dropFromHell(s)
		r.emit(newEvent(EventLeave, Content{"who": s.Name}, r.audience()...))
	}
	s.room = nil
	r.statusChanged()
}

// speak handles one MESSAGE line: nickname submissions during the pick
// window, the in-game router for seated players, hell chat for everyone
// else, and plain lobby chat between matches.
func (s *Session) speak(text string) {
	msg := sanitizeMessage(text)
	if msg == "" {
		return
	}
	r := s.room
	if !r.inGame() {
		if isCommand(msg, cmdBegin) {
			r.beginMatch(s)
			return
		}
		if strings.HasPrefix(msg, cmdSlash) {
			return
		}
		r.emit(&Event{
			Type:    EventMessage,
			Content: Content{"FROM": s.Name, "MESSAGE": msg},
			To:      r.audience(),
			From:    s.Name,
		})
		return
	}
	if r.phase == PhaseNicknameSelection {
		if isCommand(msg, cmdNickname) {
			if nickname := commandArg(msg); validNickname(nickname) {
				r.submitNickname(s, nickname)
			} else {
				r.emit(newEvent(EventError, Content{"REASON": "nicknames are 1-8 letters or digits"}, s))
			}
		}
		return
	}
	if s.player != nil && s.player.alive() && !s.player.HasLeft {
		for _, e := range s.player.speak(msg) {
			if e != nil {
				e.From = s.Name
				r.emit(e)
			}
		}
		return
	}
	// The dead talk among themselves.
	r.emit(&Event{
		Type:    EventMessage,
		Content: Content{"FROM": s.Name, "MESSAGE": msg, "hell": true},
		To:      sessionListeners(r.hell),
		From:    s.Name,
	})
}

// sanitizeMessage caps a line at 128 runes and collapses every whitespace
// run to a single space.
func sanitizeMessage(text string) string {
	runes := []rune(text)
	if len(runes) > 128 {
		runes = runes[:128]
	}
	return strings.Join(strings.Fields(string(runes)), " ")
}

// validNickname admits 1..8 letters or digits, nothing else.
func validNickname(nickname string) bool {
	runes := []rune(nickname)
	if len(runes) < 1 || len(runes) > 8 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func sessionListeners(ss []*Session) []Listener {
	out := make([]Listener, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
