package game

import (
	"strconv"
	"time"
)

// beginMatch validates the host's begin request and, when sound, runs the
// whole match inline. The script stays on the room goroutine the entire
// time; pause and waitVote keep pumping commands while it sleeps, so chat,
// votes and night orders all land mid-phase.
func (r *Room) beginMatch(by *Session) {
	switch {
	case r.inGame() || r.startRequested:
		return
	case by != r.host:
		r.emit(newEvent(EventError, Content{"REASON": "only the host can begin"}, by))
		return
	case r.setup == nil:
		r.emit(newEvent(EventError, Content{"REASON": "no setup loaded"}, by))
		return
	case len(r.members) != len(r.setup.Formation):
		r.emit(newEvent(EventError, Content{
			"REASON": "this setup seats exactly " + strconv.Itoa(len(r.setup.Formation)),
		}, by))
		return
	}
	r.startRequested = true
	defer func() { r.startRequested = false }()
	r.turnPhase(PhaseInitiating)
	r.mx.GamesRunning.Inc()
	defer r.mx.GamesRunning.Dec()
	r.runGame()
}

// runGame is one whole match, deal through epilogue. A panic anywhere
// mid-match is caught here: the match dies with a BOOM, the room survives.
func (r *Room) runGame() {
	ok := func() (ok bool) {
		defer func() {
			if v := recover(); v != nil {
				r.mx.GameAborts.Inc()
				r.log.Errorf("room %d: game terminated in the deal: %v", r.ID, v)
				r.emit(&Event{Type: EventBoom, Content: Content{}, To: r.audience(), NoRecord: true})
				r.turnPhase(PhaseIdle)
			}
		}()
		r.initGame()
		return true
	}()
	if !ok {
		return
	}
	r.log.Infof("room %d: running a game", r.ID)
	defer r.afterMatch()
	defer func() {
		if v := recover(); v != nil {
			r.mx.GameAborts.Inc()
			r.log.Errorf("room %d: game terminated: %v", r.ID, v)
			r.emit(&Event{Type: EventBoom, Content: Content{}, To: r.audience(), NoRecord: true})
			return
		}
		r.log.Infof("room %d: a game finished", r.ID)
	}()
	r.matchLoop()
	r.finishGame()
}

// initGame deals a fresh match: formation drawn from the setup, seats
// shuffled, nicknames picked, then the opening reveals.
func (r *Room) initGame() {
	r.transcript.reset()
	r.log.Infof("room %d: initiating a game", r.ID)
	r.formation = r.setup.trial(r.rng)
	r.deadLastNight = nil
	r.jailQueue = nil
	r.privateChat = map[Team][]*Player{
		TeamMafia: {}, TeamTriad: {}, TeamMason: {}, TeamCult: {}, TeamSpy: {},
	}
	r.graveyard = nil
	r.winners = nil
	r.hell = nil
	r.leavers = nil
	r.day = 1
	r.skipVotes = 0
	r.inCourt = false
	r.inLynch = false
	r.mayorRevealToday = false
	r.election = false
	r.elected = nil
	r.executed = nil
	r.suiciders = nil
	r.actorsToday = nil

	seats := append([]*Session(nil), r.members...)
	if r.timing.Shuffle {
		r.rng.Shuffle(len(r.formation), func(i, j int) {
			r.formation[i], r.formation[j] = r.formation[j], r.formation[i]
		})
		r.rng.Shuffle(len(seats), func(i, j int) {
			seats[i], seats[j] = seats[j], seats[i]
		})
	}

	r.nicknames = make(map[*Session]string)
	r.turnPhase(PhaseNicknameSelection)
	r.pause(r.timing.NicknameWindow)

	r.lineup = make([]*Player, len(seats))
	for i, user := range seats {
		nickname, picked := r.nicknames[user]
		if !picked {
			nickname = "Anonymous" + strconv.Itoa(i+1)
		}
		id := r.formation[i]
		r.lineup[i] = newPlayer(user, nickname, i+1, id, r.setup.Constraints[id], r)
	}
	for _, p := range r.lineup {
		p.role().setGoalTarget()
		p.user.player = p
	}
	for _, p := range r.lineup {
		r.emit(newEvent(EventNickname, Content{"index": p.Index, "yours": p.Nickname}, p.user))
	}
	board := make(map[int]string, len(r.lineup))
	for _, p := range r.lineup {
		board[p.Index] = p.Nickname
	}
	r.emit(newEvent(EventLineup, Content{"lineup": board}, r.audience()...))
	r.pause(5 * time.Second)
	for _, p := range r.lineup {
		r.emit(newEvent(EventEmployed, Content{"WHAT": string(p.role().id)}, p))
	}
	for _, p := range r.lineup {
		if _, grouped := r.privateChat[p.role().Team()]; grouped {
			p.joinPrivateChat(p.role().Team())
		}
	}
	for _, team := range chatGroups {
		mates := r.privateChat[team]
		roster := make([]Content, 0, len(mates))
		for _, m := range mates {
			roster = append(roster, Content{"index": m.Index, "role": string(m.role().id)})
		}
		r.emit(newEvent(EventTeammates, Content{
			"team":      string(team),
			"teammates": roster,
		}, listeners(mates)...))
	}
}

// matchLoop turns the days until a side has won: evening orders, the night
// resolving, the morning toll, discussion and the vote.
func (r *Room) matchLoop() {
	for !r.closed() {
		r.turnPhase(PhaseEvening)
		r.triggerEveningEvents()
		r.countdown(PhaseEvening, r.timing.Table[PhaseEvening])

		r.turnPhase(PhaseNight)
		r.triggerNightEvents()
		r.pause(r.timing.LongPause)

		r.day++
		for _, p := range r.remaining() {
			p.extendActionRecord()
		}
		r.jailQueue = nil

		r.turnPhase(PhaseMorning)
		if len(r.deadLastNight) > 0 {
			r.pause(r.timing.ShortPause)
			r.emit(newEvent(EventNumberOfDead, Content{
				"word": deathToll(len(r.deadLastNight), len(r.remaining())),
			}, r.audience()...))
			for _, dead := range r.deadLastNight {
				r.revealIdentity(dead)
			}
			r.deadLastNight = nil
		}
		if r.gameOver() {
			return
		}

		r.turnPhase(PhaseDiscussion)
		r.countdown(PhaseDiscussion, r.timing.Table[PhaseDiscussion])

		r.runVote()

		r.turnPhase(PhasePostExecution)
		for _, e := range r.executed {
			r.revealIdentity(e)
		}
		r.inCourt, r.inLynch = false, false
		if r.gameOver() {
			return
		}
	}
}

// deathToll words the morning announcement. The town never hears a number.
func deathToll(dead, standing int) string {
	switch {
	case standing == 0:
		return "all"
	case dead == 1:
		return "one"
	case dead <= 3:
		return "some"
	case dead <= 5:
		return "many"
	case dead <= 7:
		return "toomany"
	default:
		return "most"
	}
}

// runVote is the day's trial machinery. Rounds repeat on one shared clock
// budget until it runs dry, nobody runs, the town skips, or the lynch
// quota is reached. Every round ends with the ballots wiped.
func (r *Room) runVote() {
	r.skipVotes = 0
	r.executed = nil
	budget := r.timing.Table[PhaseVote]
	for budget > 0 {
		r.elected = nil
		r.turnPhase(PhaseVote)
		left, rang := r.waitVote(budget)

		stop := !rang
		if !stop && float64(r.skipVotes) > float64(len(r.remaining()))/2 {
			r.emit(newEvent(EventDayEvent, Content{"verdict": "SKIP"}, r.audience()...))
			stop = true
		}
		if !stop {
			budget = left
			r.elected = r.pluralityLeader()
			hung := false
			r.turnPhase(PhaseElection)
			r.countdown(PhaseElection, r.timing.Table[PhaseElection])
			switch {
			case r.inLynch:
				hung = true
			case r.inCourt:
				hung = true
			default:
				r.turnPhase(PhaseDefense)
				r.countdown(PhaseDefense, r.timing.Table[PhaseDefense])
				r.turnPhase(PhaseVoteExecution)
				r.countdown(PhaseVoteExecution, r.timing.Table[PhaseVoteExecution])
				verdict := Content{}
				total := 0
				for _, voter := range r.remaining() {
					weight := int(voter.ExecutionChoice) * voter.role().votes
					verdict[strconv.Itoa(voter.Index)] = weight
					total += weight
				}
				r.emit(newEvent(EventVoteExecutionResult, verdict, r.audience()...))
				r.pause(r.timing.ShortPause)
				if total > 0 {
					r.turnPhase(PhaseLastWords)
					r.countdown(PhaseLastWords, r.timing.Table[PhaseLastWords])
					hung = true
				}
			}
			if hung {
				r.execute(r.elected)
				quota := r.setup.Constraints[RoleMarshall].intVal(OptQuotaPerLynch, 3)
				if !r.inLynch || len(r.executed) >= quota {
					stop = true
				}
			}
		}
		r.settleBallots()
		if stop {
			break
		}
	}
}

// pluralityLeader is the standing player with the most votes; the earliest
// seat wins ties.
func (r *Room) pluralityLeader() *Player {
	var leader *Player
	for _, p := range r.remaining() {
		if leader == nil || p.VotedCount > leader.VotedCount {
			leader = p
		}
	}
	return leader
}

// execute hangs the condemned. A Jester wins on the spot and marks the
// jurors who sent them up; one or all of them follow tonight.
func (r *Room) execute(condemned *Player) {
	if condemned.role().id == RoleJester {
		condemned.win()
		var jurors []*Player
		for _, p := range r.remaining() {
			if p.VotedFor == condemned || p.ExecutionChoice == VoteGuilty {
				jurors = append(jurors, p)
			}
		}
		if condemned.role().opts.stringVal(OptVictims, VictimsOne) == VictimsOne {
			if len(jurors) > 0 {
				r.queueSuicide(jurors[r.rng.Intn(len(jurors))], string(RoleJester))
			}
		} else {
			for _, juror := range jurors {
				r.queueSuicide(juror, string(RoleJester))
			}
		}
	}
	condemned.die(deathByVerdict)
	r.executed = append(r.executed, condemned)
}

// settleBallots wipes the round's votes and queues the Counsels whose
// client just hanged and whose contract says to follow them.
func (r *Room) settleBallots() {
	for _, p := range r.remaining() {
		p.VotedCount = 0
		p.VotedFor = nil
		p.VotedSkip = false
		p.ExecutionChoice = VoteAbstention
	}
	r.skipVotes = 0
	r.election = false
	r.elected = nil
	for _, p := range r.remaining() {
		role := p.role()
		if role.id != RoleCounsel {
			continue
		}
		if role.opts.stringVal(OptIfFail, FailSuicide) != FailSuicide {
			continue
		}
		if anyAmong(role.goalTargets, r.executed) {
			r.queueSuicide(p, string(RoleCounsel))
		}
	}
}

// revealIdentity unwraps a body in stages: the seat, how they died, what
// they were, what they left behind. A sanitized corpse gives up nothing.
// The content builds up across the stages on purpose; late joiners of the
// reveal still see the whole story in the last event.
func (r *Room) revealIdentity(dead *Player) {
	hanged := dead.CauseOfDeath[len(dead.CauseOfDeath)-1] == deathByVerdict

	reason := any(dead.CauseOfDeath)
	roleName := any(string(dead.role().id))
	will := any(dead.LastWill)
	if dead.DeadSanitized {
		reason = []string{}
		roleName = nil
		will = nil
	}

	content := Content{"index": dead.Index}
	if hanged {
		content["reason"] = reason
		content["role"] = roleName
		r.emit(newEvent(EventIdentityReveal, content, r.audience()...))
		r.pause(r.timing.ShortPause)
		content["lw"] = will
		r.emit(newEvent(EventIdentityReveal, content, r.audience()...))
	} else {
		r.emit(newEvent(EventIdentityReveal, content, r.audience()...))
		r.pause(3 * time.Second)
		content["reason"] = reason
		r.emit(newEvent(EventIdentityReveal, content, r.audience()...))
		r.pause(3 * time.Second)
		content["role"] = roleName
		r.emit(newEvent(EventIdentityReveal, content, r.audience()...))
		r.pause(3 * time.Second)
		content["lw"] = will
		r.emit(newEvent(EventIdentityReveal, content, r.audience()...))
	}
	r.graveyard = append(r.graveyard, dead)
	if hanged {
		r.pause(3 * time.Second)
	} else {
		r.pause(5 * time.Second)
	}
}

// afterMatch is the epilogue that runs however the match ended: the record
// goes to the archive, seats detach, and the room returns to the lobby.
func (r *Room) afterMatch() {
	if r.archive != nil {
		r.archive.StoreMatch(r.matchRecord())
	}
	for _, m := range r.members {
		m.player = nil
	}
	names := make([]string, len(r.members))
	for i, m := range r.members {
		names[i] = m.Name
	}
	r.emit(&Event{
		Type:     EventBackToIdle,
		Content:  Content{"members": names},
		To:       r.audience(),
		NoRecord: true,
	})
	r.turnPhase(PhaseIdle)
}
