package game

// EventType tags every frame the server pushes. Clients switch on it.
type EventType string

const (
	// Connection scope.
	EventInitialInformation EventType = "INITIAL_INFORMATION"
	EventConnect            EventType = "CONNECT"
	EventDisconnect         EventType = "DISCONNECT"
	EventMultipleLogin      EventType = "multiple"
	EventNewRoom            EventType = "NEW_ROOM"
	EventDeletedRoom        EventType = "DELETED_ROOM"
	EventRoomStatus         EventType = "ROOM_STATUS"
	EventCreate             EventType = "CREATE"

	// Room scope.
	EventEnter    EventType = "ENTER"
	EventLeave    EventType = "LEAVE"
	EventAFK      EventType = "AFK"
	EventGameInfo EventType = "GAME_INFO"
	EventMessage  EventType = "MESSAGE"
	EventError    EventType = "ERROR"
	EventSetup    EventType = "SETUP"

	// Match scope.
	EventBegin               EventType = "BEGIN"
	EventRolePool            EventType = "ROLE_POOL"
	EventBlackmailed         EventType = "BLACKMAILED"
	EventSkip                EventType = "SKIP"
	EventSuicide             EventType = "SUICIDE"
	EventPhase               EventType = "PHASE"
	EventTime                EventType = "TIME"
	EventNickname            EventType = "NICKNAME"
	EventNicknameConfirmed   EventType = "NICKNAME_CONFIRMED"
	EventLineup              EventType = "LINEUP"
	EventEmployed            EventType = "EMPLOYED"
	EventTeammates           EventType = "TEAMMATES"
	EventVote                EventType = "VOTE"
	EventVoteExecutionResult EventType = "VOTE_EXECUTION_RESULT"
	EventDayEvent            EventType = "DAY_EVENT"
	EventVisit               EventType = "VISIT"
	EventSecondVisit         EventType = "SECOND_VISIT"
	EventAct                 EventType = "ACT"
	EventSound               EventType = "SOUND"
	EventAbilityResult       EventType = "ABILITY_RESULT"
	EventNumberOfDead        EventType = "NUMBER_OF_DEAD"
	EventIdentityReveal      EventType = "IDENTITY_REVEAL"
	EventDead                EventType = "DEAD"
	EventPM                  EventType = "PM"
	EventPMSent              EventType = "PM_SENT"
	EventFinish              EventType = "FINISH"
	EventBackToIdle          EventType = "BACK_TO_IDLE"
	EventBoom                EventType = "BOOM"
)

// Content is an event payload. Keys are wire names, values JSON-encodable.
type Content map[string]any

// clone is a shallow copy, enough to freeze a payload that the caller keeps
// mutating between emissions.
func (c Content) clone() Content {
	out := make(Content, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Listener is anyone an event can address. Users listen directly; players
// proxy to their user and fall silent once the user abandoned the seat.
type Listener interface {
	receive(typ EventType, content Content)
	recordName() string
}

// Event is one emission: a type, a payload and an audience. Events flow
// through Room.emit, which appends to the transcript before delivery.
// From names the speaker for chat lines; the transcript keeps it, the wire
// payload already carries its own FROM key.
type Event struct {
	Type     EventType
	Content  Content
	To       []Listener
	From     string
	NoRecord bool
}

func newEvent(typ EventType, content Content, to ...Listener) *Event {
	return &Event{Type: typ, Content: content, To: to}
}
