package game

import "time"

// Phase is the room lifecycle state. Rooms idle between matches; everything
// from INITIATING to FINISHING belongs to a running match.
type Phase string

const (
	PhaseIdle              Phase = "IDLE"
	PhaseInitiating        Phase = "INITIATING"
	PhaseNicknameSelection Phase = "NICKNAME_SELECTION"
	PhaseMorning           Phase = "MORNING"
	PhaseDiscussion        Phase = "DISCUSSION"
	PhaseVote              Phase = "VOTE"
	PhaseElection          Phase = "ELECTION"
	PhaseDefense           Phase = "DEFENSE"
	PhaseVoteExecution     Phase = "VOTE_EXECUTION"
	PhaseLastWords         Phase = "LAST_WORDS"
	PhasePostExecution     Phase = "POST_EXECUTION"
	PhaseEvening           Phase = "EVENING"
	PhaseNight             Phase = "NIGHT"
	PhaseFinishing         Phase = "FINISHING"
)

// VoteType is the weight a ballot carries during VOTE_EXECUTION, plus the
// sentinel for skipping the election entirely.
type VoteType int

const (
	VoteAbstention VoteType = 0
	VoteGuilty     VoteType = 1
	VoteInnocent   VoteType = -1
	VoteSkip       VoteType = 58826974
)

// Timing bundles every duration the match script suspends on. Production and
// debug tables mirror each other; tests inject microscopic ones.
type Timing struct {
	Table          map[Phase]time.Duration
	NicknameWindow time.Duration
	ShortPause     time.Duration // dramatic beats between reveal stages
	LongPause      time.Duration // night-to-morning and lineup beats
	Shuffle        bool          // random seats and role deal
}

// ProductionTiming is the pacing a real town plays at.
func ProductionTiming() Timing {
	return Timing{
		Table: map[Phase]time.Duration{
			PhaseDiscussion:    36 * time.Second,
			PhaseVote:          120 * time.Second,
			PhaseElection:      5 * time.Second,
			PhaseDefense:       10 * time.Second,
			PhaseVoteExecution: 15 * time.Second,
			PhaseLastWords:     5 * time.Second,
			PhaseEvening:       36 * time.Second,
		},
		NicknameWindow: 30 * time.Second,
		ShortPause:     time.Second,
		LongPause:      5 * time.Second,
		Shuffle:        true,
	}
}

// DebugTiming compresses every wait so a full match runs in under a minute.
// Seats and roles deal in submission order so scripted games are predictable.
func DebugTiming() Timing {
	return Timing{
		Table: map[Phase]time.Duration{
			PhaseDiscussion:    3 * time.Second,
			PhaseVote:          3 * time.Second,
			PhaseElection:      3 * time.Second,
			PhaseDefense:       3 * time.Second,
			PhaseVoteExecution: 10 * time.Second,
			PhaseLastWords:     3 * time.Second,
			PhaseEvening:       3 * time.Second,
		},
		NicknameWindow: 5 * time.Second,
		ShortPause:     time.Second,
		LongPause:      time.Second,
		Shuffle:        false,
	}
}

// countdownMarks are the seconds-remaining points the clock announces at.
// The zero mark ends the phase without an announcement.
var countdownMarks = []time.Duration{
	60 * time.Second,
	30 * time.Second,
	10 * time.Second,
	5 * time.Second,
	0,
}

// Clock abstracts the wall clock so tests can compress a match.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock returns the production clock.
func RealClock() Clock { return realClock{} }
