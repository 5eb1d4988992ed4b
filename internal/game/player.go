package game

import (
	"fmt"
	"sort"
	"strings"
)

// deathByVerdict marks an execution by the town's vote. Identity reveals and
// the Executioner's win check key on it.
const deathByVerdict = "Democracy"

// deathByDesertion marks a leaver put down by the engine. Not healable.
const deathByDesertion = "leave"

// Player is one seat in a running match. It carries the full night ledger
// the ability hooks read and write: who went where, who guards whom, what
// sticks to the corpse. A Player outlives its own death and doubles as the
// body the Coroner turns over.
type Player struct {
	user *Session
	room *Room

	Index    int
	Nickname string
	LastWill string

	// roleRecord grows on every conversion; the last entry is who the
	// player is right now.
	roleRecord []*Role

	HasLeft bool

	Crimes map[Crime]bool

	// Visits, VisitedBy and Act are indexed by day. extendActionRecord
	// appends a fresh slot each dawn.
	Visits    []*Player
	VisitedBy [][]*Player
	Act       []bool

	HealedBy      []*Player
	BodyguardedBy []*Player

	Oiled         bool
	IsBehind      *Player
	ControlledBy  *Player
	JailedBy      *Player
	FramedTo      *Player
	FramedRole    *Role
	BlackmailedOn int

	VotedFor        *Player
	VotedSkip       bool
	VotedCount      int
	ExecutionChoice VoteType
	WillSuicide     bool

	CauseOfDeath  []string
	DeadSanitized bool
}

// newPlayer deals a seat. Day slots start at one pregame entry plus day one;
// the role is constructed from the setup's normalized option table.
func newPlayer(user *Session, nickname string, index int, id RoleID, opts Constraints, room *Room) *Player {
	p := &Player{
		user:      user,
		room:      room,
		Index:     index,
		Nickname:  nickname,
		Crimes:    make(map[Crime]bool, len(AllCrimes)),
		Visits:    []*Player{nil, nil},
		VisitedBy: [][]*Player{nil, {}},
		Act:       []bool{false, false},
	}
	p.roleRecord = []*Role{descriptorOf(id).New(p, opts)}
	return p
}

func (p *Player) role() *Role { return p.roleRecord[len(p.roleRecord)-1] }

// pastRoles lists every identity the player has worn, oldest first.
func (p *Player) pastRoles() []RoleID {
	out := make([]RoleID, len(p.roleRecord))
	for i, r := range p.roleRecord {
		out[i] = r.id
	}
	return out
}

func (p *Player) alive() bool { return len(p.CauseOfDeath) == 0 }

// isHealed reports whether a pending heal can still save the player.
func (p *Player) isHealed() bool {
	return p.role().healable && len(p.HealedBy) > 0
}

// deathAnnounced reports whether the body is public knowledge. Deaths stay
// hidden until the morning reveal; sanitizers race that window.
func (p *Player) deathAnnounced() bool { return p.room.inGraveyard(p) }

// addVisitor records a caller at this player's door, once per night each.
func (p *Player) addVisitor(day int, visitor *Player) {
	for _, v := range p.VisitedBy[day] {
		if v == visitor {
			return
		}
	}
	p.VisitedBy[day] = append(p.VisitedBy[day], visitor)
}

func (p *Player) commitCrime(c Crime) { p.Crimes[c] = true }

// crimeSheet lists committed crimes in canonical order.
func (p *Player) crimeSheet() []string {
	var out []string
	for _, c := range AllCrimes {
		if p.Crimes[c] {
			out = append(out, string(c))
		}
	}
	return out
}

// extendActionRecord opens the day ledger slots for a new day and clears the
// overnight protections.
func (p *Player) extendActionRecord() {
	p.Visits = append(p.Visits, nil)
	p.VisitedBy = append(p.VisitedBy, []*Player{})
	p.Act = append(p.Act, false)
	p.HealedBy = p.HealedBy[:0]
	p.BodyguardedBy = p.BodyguardedBy[:0]
}

// receive proxies to the seat's user. A deserted seat hears nothing.
func (p *Player) receive(typ EventType, content Content) {
	if p.HasLeft || p.user == nil {
		return
	}
	p.user.receive(typ, content)
}

func (p *Player) recordName() string {
	if p.user != nil {
		return p.user.Name
	}
	return p.Nickname
}

// joinPrivateChat seats the player in a team channel. Arrival order is
// seniority: the first member is next in line for a field promotion.
func (p *Player) joinPrivateChat(group Team) {
	p.room.privateChat[group] = append(p.room.privateChat[group], p)
}

func (p *Player) leavePrivateChat(group Team) {
	members := p.room.privateChat[group]
	for i, m := range members {
		if m == p {
			p.room.privateChat[group] = append(members[:i], members[i+1:]...)
			return
		}
	}
}

// roleInGroup reports whether a role sits in a private channel. The spy
// channel is the wiretap feed, not a team; only the Spy itself is on it.
func roleInGroup(r *Role, group Team) bool {
	switch group {
	case TeamSpy:
		return r.id == RoleSpy
	case TeamMafia:
		return r.belongsTo(CatMafia)
	case TeamTriad:
		return r.belongsTo(CatTriad)
	case TeamMason:
		return r.belongsTo(CatMason)
	case TeamCult:
		return r.belongsTo(CatCult)
	}
	return false
}

// be converts the player to a new role. Channel membership follows: the old
// team is told who left their ranks unless the old channel was the wiretap.
// The new role is built from the setup's option table for that role.
func (p *Player) be(id RoleID) {
	var formerGroup Team
	hadGroup := false
	next := descriptorOf(id)
	for _, group := range chatGroups {
		if len(p.roleRecord) > 0 && roleInGroup(p.role(), group) && !next.Categories.Has(groupCategory(group)) {
			p.leavePrivateChat(group)
			if group != TeamSpy {
				formerGroup = group
				hadGroup = true
			}
			break
		}
	}
	for _, group := range chatGroups {
		if next.Categories.Has(groupCategory(group)) || (group == TeamSpy && id == RoleSpy) {
			p.joinPrivateChat(group)
			break
		}
	}
	p.roleRecord = append(p.roleRecord, next.New(p, p.room.setup.Constraints[id]))
	p.role().setGoalTarget()
	content := Content{
		"WHAT":        string(id),
		"OPPORTUNITY": p.role().opportunity,
		"GOAL_TARGET": p.goalTargetIndices(),
	}
	p.room.emit(newEvent(EventEmployed, content, p))
	if hadGroup {
		forTeam := Content{"WHAT": string(id), "WHO": p.Index}
		p.room.emit(newEvent(EventEmployed, forTeam, listeners(p.room.privateChat[formerGroup])...))
	}
}

func (p *Player) goalTargetIndices() any {
	targets := p.role().goalTargets
	if len(targets) == 0 {
		return nil
	}
	indices := make([]int, len(targets))
	for i, t := range targets {
		indices[i] = t.Index
	}
	sort.Ints(indices)
	return indices
}

// groupCategory is the mask a role must carry to sit in a team channel.
func groupCategory(group Team) Category {
	switch group {
	case TeamMafia:
		return CatMafia
	case TeamTriad:
		return CatTriad
	case TeamMason:
		return CatMason
	case TeamCult:
		return CatCult
	}
	// The wiretap never matches by category.
	return Category(1) << 63
}

// vote casts this player's ballot. During VOTE_EXECUTION it records the
// verdict; otherwise it piles votes on a candidate or on skipping the day,
// then trips the election when either crosses half the living.
func (p *Player) vote(target *Player, kind VoteType) {
	room := p.room
	if room.phase == PhaseVoteExecution {
		p.ExecutionChoice = kind
		room.emit(newEvent(EventVote, Content{"index": p.Index}, room.audience()...))
		return
	}
	if kind == VoteSkip {
		room.skipVotes += p.role().votes
		p.VotedSkip = true
	} else {
		target.VotedCount += p.role().votes
		p.VotedFor = target
	}
	content := Content{
		"court":      room.inCourt,
		"index":      nil,
		"skip_count": room.skipVotes,
	}
	if !room.inCourt {
		content["index"] = p.Index
	}
	for i := 0; i < p.role().votes; i++ {
		room.emit(newEvent(EventVote, content.clone(), room.audience()...))
	}
	half := float64(len(room.remaining())) / 2
	if float64(room.skipVotes) > half || (target != nil && float64(target.VotedCount) > half) {
		room.election = true
	}
}

// cancelVote takes the ballot back. skip withdraws a skip vote; otherwise
// the candidate vote. During VOTE_EXECUTION it reverts to abstention.
func (p *Player) cancelVote(skip bool) {
	room := p.room
	if room.phase == PhaseVoteExecution {
		p.vote(nil, VoteAbstention)
		return
	}
	if skip {
		p.VotedSkip = false
		room.skipVotes -= p.role().votes
	} else {
		if p.VotedFor == nil {
			return
		}
		p.VotedFor.VotedCount -= p.role().votes
		p.VotedFor = nil
	}
	content := Content{
		"court":      room.inCourt,
		"index":      nil,
		"skip_count": room.skipVotes,
	}
	if !room.inCourt {
		content["index"] = p.Index
	}
	for i := 0; i < p.role().votes; i++ {
		room.emit(newEvent(EventVote, content.clone(), room.audience()...))
	}
}

// die stacks a cause of death and tells the victim. Bodies killed at night
// queue for the morning reveal; the ghost moves to the dead chat at once.
func (p *Player) die(cause string) {
	p.CauseOfDeath = append(p.CauseOfDeath, cause)
	p.room.log.Event("death", p.Nickname, cause)
	p.room.emit(newEvent(EventDead, Content{"cause": cause}, p))
	if p.room.phase == PhaseNight {
		p.room.deadLastNight = append(p.room.deadLastNight, p)
	}
	if p.user != nil && !p.HasLeft {
		p.room.hell = append(p.room.hell, p.user)
	}
}

func (p *Player) win() {
	p.room.winners = append(p.room.winners, victory{player: p, role: p.role()})
}

// speak routes one in-game line: plain speech, or a slash command admitted
// by the current phase. It returns the events to emit; ballot commands emit
// on their own and return nothing.
func (p *Player) speak(msg string) []*Event {
	room := p.room
	if p.BlackmailedOn == room.day {
		// Blackmail silences; it does not cancel the night. The victim may
		// still plan a visit or resign to suicide.
		if strings.HasPrefix(msg, cmdSlash) {
			if isCommand(msg, cmdSuicide) {
				p.WillSuicide = !p.WillSuicide
				return p.makeEvent(EventSuicide, Content{"WILL": p.WillSuicide}, p)
			}
			if isCommand(msg, cmdVisit) && room.phase == PhaseEvening {
				return p.eveningCommand(msg)
			}
			return nil
		}
		return p.makeEvent(EventError, Content{"REASON": "blackmailed; you cannot speak today"}, p)
	}
	switch room.phase {
	case PhaseMorning, PhaseDiscussion:
		return p.speakDay(msg, room.phase == PhaseDiscussion)
	case PhaseVote:
		return p.speakVote(msg)
	case PhaseDefense:
		return p.speakDefense(msg)
	case PhaseVoteExecution:
		return p.speakVoteExecution(msg)
	case PhaseLastWords:
		if room.elected == p && !strings.HasPrefix(msg, cmdSlash) {
			return p.makeMessageEvent(msg, false)
		}
	case PhasePostExecution:
		return p.speakPostExecution(msg)
	case PhaseEvening:
		return p.speakEvening(msg)
	case PhaseNight:
		return p.makeEvent(EventError, Content{"REASON": "nothing can be done while the night plays out"}, p)
	}
	return nil
}

// speakDay handles MORNING and DISCUSSION. Day activations (court, lynch,
// mayor) open only once discussion starts.
func (p *Player) speakDay(msg string, discussion bool) []*Event {
	room := p.room
	if !strings.HasPrefix(msg, cmdSlash) {
		return p.makeMessageEvent(msg, false)
	}
	switch {
	case isCommand(msg, cmdPM) && !room.inCourt:
		if received := room.playerByIndex(commandIndex(msg)); received != nil && received != p {
			return p.makeMessageEvent(msg, true)
		}
	case discussion && (isCommand(msg, cmdCourt) || isCommand(msg, cmdLynch) || isCommand(msg, cmdMayor)):
		if p.role().canActivate() {
			if e := p.role().activate(); e != nil {
				return []*Event{e}
			}
		}
	case isCommand(msg, cmdJail) && p.role().belongsTo(CatJailing):
		if jailed := room.playerByIndex(commandIndex(msg)); jailed != nil && jailed != p {
			return p.makeJailEvent(jailed)
		}
	}
	return nil
}

func (p *Player) speakVote(msg string) []*Event {
	room := p.room
	if !strings.HasPrefix(msg, cmdSlash) {
		return p.makeMessageEvent(msg, false)
	}
	switch {
	case isCommand(msg, cmdSkip):
		if p.VotedSkip {
			p.cancelVote(true)
		} else {
			if p.VotedFor != nil {
				p.cancelVote(false)
			}
			p.vote(nil, VoteSkip)
		}
	case isCommand(msg, cmdVote) && p.role().votes > 0:
		// A standing ballot comes back before the new one goes in; votes
		// are never counted twice.
		if voted := room.playerByIndex(commandIndex(msg)); voted != nil && voted != p {
			if p.VotedSkip {
				p.cancelVote(true)
			}
			if p.VotedFor != nil {
				p.cancelVote(false)
			}
			p.vote(voted, VoteAbstention)
		}
	case isCommand(msg, cmdPM) && !room.inCourt:
		if received := room.playerByIndex(commandIndex(msg)); received != nil && received != p {
			return p.makeMessageEvent(msg, true)
		}
	case isCommand(msg, cmdCourt) && p.role().canActivate():
		// Extra votes are granted on an empty ballot only.
		if p.VotedFor == nil {
			if e := p.role().activate(); e != nil {
				return []*Event{e}
			}
		} else {
			return p.makeEvent(EventError, Content{
				"REASON": "withdraw your vote first; extra votes are granted while abstaining",
			}, p)
		}
	case isCommand(msg, cmdLynch) && p.role().canActivate():
		if e := p.role().activate(); e != nil {
			return []*Event{e}
		}
	case isCommand(msg, cmdMayor) && p.role().canActivate():
		if p.VotedFor == nil {
			if e := p.role().activate(); e != nil {
				return []*Event{e}
			}
		} else {
			return p.makeEvent(EventError, Content{
				"REASON": "withdraw your vote first; extra votes are granted while abstaining",
			}, p)
		}
	case isCommand(msg, cmdJail) && p.role().belongsTo(CatJailing):
		if jailed := room.playerByIndex(commandIndex(msg)); jailed != nil && jailed != p {
			return p.makeJailEvent(jailed)
		}
	}
	return nil
}

// speakDefense lets only the accused address the town; jailors may still
// book a cell for the night.
func (p *Player) speakDefense(msg string) []*Event {
	room := p.room
	if strings.HasPrefix(msg, cmdSlash) {
		if isCommand(msg, cmdJail) && p.role().belongsTo(CatJailing) {
			if jailed := room.playerByIndex(commandIndex(msg)); jailed != nil && jailed != p {
				return p.makeJailEvent(jailed)
			}
		}
		return nil
	}
	if room.elected == p {
		return p.makeMessageEvent(msg, false)
	}
	return nil
}

func (p *Player) speakVoteExecution(msg string) []*Event {
	room := p.room
	if !strings.HasPrefix(msg, cmdSlash) {
		return p.makeMessageEvent(msg, false)
	}
	switch {
	case isCommand(msg, cmdPM) && !room.inCourt:
		if received := room.playerByIndex(commandIndex(msg)); received != nil && received != p {
			return p.makeMessageEvent(msg, true)
		}
	case isCommand(msg, cmdMayor) && p.role().canActivate():
		if e := p.role().activate(); e != nil {
			return []*Event{e}
		}
	case isCommand(msg, cmdJail) && p.role().belongsTo(CatJailing):
		if jailed := room.playerByIndex(commandIndex(msg)); jailed != nil && jailed != p {
			return p.makeJailEvent(jailed)
		}
	case (isCommand(msg, cmdGuilty) || isCommand(msg, cmdInnocent)) && p.role().votes > 0:
		verdict := VoteGuilty
		if isCommand(msg, cmdInnocent) {
			verdict = VoteInnocent
		}
		p.vote(nil, verdict)
	case isCommand(msg, cmdAbstention) && p.role().votes > 0:
		p.cancelVote(false)
	}
	return nil
}

func (p *Player) speakPostExecution(msg string) []*Event {
	room := p.room
	if room.inCourt || room.inLynch {
		return nil
	}
	if !strings.HasPrefix(msg, cmdSlash) {
		return p.makeMessageEvent(msg, false)
	}
	if isCommand(msg, cmdPM) {
		if received := room.playerByIndex(commandIndex(msg)); received != nil && received != p {
			return p.makeMessageEvent(msg, true)
		}
	}
	return nil
}

// speakEvening is the night-planning router: visits, activations, recruit
// orders, and the jail / team / crier chat fan-out.
func (p *Player) speakEvening(msg string) []*Event {
	room := p.room
	if strings.HasPrefix(msg, cmdSlash) {
		return p.eveningCommand(msg)
	}
	if jailing := p.JailedBy; jailing != nil {
		content := Content{"FROM": p.Index, "MESSAGE": msg}
		if team := room.privateChat[jailing.role().Team()]; len(team) > 0 {
			to := append([]Listener{p}, listeners(team)...)
			return p.makeEvent(EventMessage, content, to...)
		}
		return p.makeEvent(EventMessage, content, p, jailing)
	}
	if p.role().belongsTo(CatJailing) {
		if jailed := p.role().isJailing(); jailed != nil {
			forJailed := Content{"FROM": string(RoleJailor), "MESSAGE": msg, "SHOW_ROLE_NAME": true}
			events := p.makeEvent(EventMessage, forJailed, jailed)
			forJailing := Content{"FROM": p.Index, "MESSAGE": msg}
			to := listeners(room.privateChat[p.role().Team()])
			if len(to) == 0 {
				to = []Listener{p}
			}
			return append(events, p.makeEvent(EventMessage, forJailing, to...)...)
		}
		return nil
	}
	if team := room.privateChat[p.role().Team()]; len(team) > 0 {
		content := Content{"FROM": p.Index, "MESSAGE": msg}
		events := p.makeEvent(EventMessage, content, listeners(team)...)
		if t := p.role().Team(); t == TeamMafia || t == TeamTriad {
			wiretap := Content{"FROM": string(t), "MESSAGE": msg, "SHOW_ROLE_NAME": true}
			events = append(events, p.makeEvent(EventMessage, wiretap, listeners(room.privateChat[TeamSpy])...)...)
		}
		return events
	}
	if p.role().belongsTo(CatCrying) {
		content := Content{"FROM": string(RoleCrier), "MESSAGE": msg, "SHOW_ROLE_NAME": true}
		return p.makeEvent(EventMessage, content, room.audience()...)
	}
	return nil
}

func (p *Player) eveningCommand(msg string) []*Event {
	room := p.room
	switch {
	case p.JailedBy != nil:
		// A night behind bars allows nothing.
		return nil
	case room.day <= p.role().restTill:
		content := Content{
			"ROLE":   string(p.role().id),
			"REASON": fmt.Sprintf("resting until night %d", p.role().restTill),
		}
		return p.makeEvent(EventError, content, p)
	case isCommand(msg, cmdVisit) && p.role().belongsTo(CatVisiting) && p.role().opportunity > 0:
		first, second, ok := commandIndices(msg)
		if !ok {
			return nil
		}
		target := room.playerByIndex(first)
		if target == nil {
			return nil
		}
		if p.role().forDead() {
			if !target.deathAnnounced() {
				return nil
			}
			if p.role().id == RoleAmnesiac && descriptorOf(target.role().id).Unique {
				return nil
			}
			return p.visitAndMakeVisitEvent(target, nil)
		}
		if p.role().id == RoleWitch {
			if dest := room.playerByIndex(second); dest != nil {
				return p.visitAndMakeVisitEvent(target, dest)
			}
			return nil
		}
		if target == p {
			if p.role().canTargetSelf {
				return p.visitAndMakeVisitEvent(target, nil)
			}
			return nil
		}
		if p.role().belongsTo(CatKillingVisiting) {
			mine := room.privateChat[p.role().Team()]
			theirs := room.privateChat[target.role().Team()]
			if len(mine) > 0 && p.role().Team() == target.role().Team() && len(theirs) > 0 {
				return nil
			}
		}
		return p.visitAndMakeVisitEvent(target, nil)
	case isCommand(msg, cmdAct):
		if p.role().belongsTo(CatActiveAndVisiting) && !p.role().canAtSameTime && p.Visits[room.day] != nil {
			content := Content{
				"ROLE":   string(p.role().id),
				"REASON": "one night allows the ability or a visit, not both",
			}
			return p.makeEvent(EventError, content, p)
		}
		if p.role().opportunity > 0 && (!p.role().belongsTo(CatJailing) || p.role().isJailing() != nil) {
			p.Act[room.day] = !p.Act[room.day]
			roleName := string(p.role().id)
			if p.role().belongsTo(CatJailing) {
				roleName = string(RoleJailor)
			}
			content := Content{"ROLE": roleName, "ACTIVE": p.Act[room.day]}
			var to []Listener
			if team := room.privateChat[p.role().Team()]; p.role().belongsTo(CatJailing) && len(team) > 0 {
				to = append([]Listener{}, listeners(team)...)
				if jailed := p.role().isJailing(); jailed != nil {
					to = append(to, jailed)
				}
			} else {
				to = []Listener{p}
				if jailed := p.role().isJailing(); jailed != nil {
					to = append(to, jailed)
				}
			}
			return p.makeEvent(EventAct, content, to...)
		}
	case isCommand(msg, cmdRecruit) && p.role().belongsTo(CatBoss):
		target := room.playerByIndex(commandIndex(msg))
		if target == nil {
			return nil
		}
		if rec, ok := p.role().behavior.(recruiter); ok {
			rec.orderRecruit(target)
			content := Content{"ROLE": string(p.role().id), "TARGET": target.Index}
			return p.makeEvent(EventSecondVisit, content, listeners(room.privateChat[p.role().Team()])...)
		}
	case isCommand(msg, cmdSuicide):
		// Reserved for the blackmailed branch; a night command does nothing.
		return nil
	}
	return nil
}

// makeEvent builds a single addressed event, by analogy with emit: the
// caller decides type, audience and payload.
func (p *Player) makeEvent(typ EventType, content Content, to ...Listener) []*Event {
	if typ == EventBlackmailed {
		content = nil
	}
	return []*Event{newEvent(typ, content, to...)}
}

// makeJailEvent books a cell for tonight. Rebooking moves the jailor to the
// back of the queue; cells are assigned first come, first served at dusk.
func (p *Player) makeJailEvent(target *Player) []*Event {
	if w, ok := p.role().asWarden(); ok {
		w.orderJail(target)
	} else {
		return nil
	}
	queue := p.room.jailQueue
	for i, j := range queue {
		if j == p {
			queue = append(queue[:i], queue[i+1:]...)
			break
		}
	}
	p.room.jailQueue = append(queue, p)
	content := Content{"ROLE": string(p.role().id), "TARGET": target.Index}
	return p.makeEvent(EventDayEvent, content, p)
}

// visitAndMakeVisitEvent records the visit plan and tells the team (or just
// the visitor) where tonight goes.
func (p *Player) visitAndMakeVisitEvent(target *Player, second *Player) []*Event {
	p.Visits[p.room.day] = target
	content := Content{
		"FROM":   p.Index,
		"ROLE":   string(p.role().id),
		"TARGET": target.Index,
	}
	if second != nil {
		if w, ok := p.role().behavior.(secondTargeter); ok {
			w.orderSecondTarget(second)
		}
		content["SECOND_TARGET"] = second.Index
	}
	if teammates := p.room.privateChat[p.role().Team()]; len(teammates) > 0 {
		return p.makeEvent(EventVisit, content, listeners(teammates)...)
	}
	return p.makeEvent(EventVisit, content, p)
}

// makeMessageEvent turns a line into MESSAGE traffic: a PM pair, court
// speech under the jury mask, the defendant's podium line, or floor talk.
func (p *Player) makeMessageEvent(msg string, pm bool) []*Event {
	room := p.room
	if pm {
		fields := strings.Fields(msg)
		if len(fields) < 3 {
			return nil
		}
		received := room.playerByIndex(commandIndex(msg))
		if received == nil || received == p {
			return nil
		}
		text := strings.Join(fields[2:], " ")
		forTo := Content{"MESSAGE": text, "FROM": p.Index}
		forFrom := Content{"MESSAGE": text, "TO": received.Index}
		return []*Event{
			newEvent(EventPM, forTo, received),
			newEvent(EventPMSent, forFrom, p),
		}
	}
	content := Content{"MESSAGE": msg}
	switch {
	case room.inCourt:
		content["SHOW_ROLE_NAME"] = true
		if p.role().belongsTo(CatCrying) {
			content["FROM"] = string(RoleJudge)
		} else {
			content["FROM"] = "Jury"
		}
	case (room.phase == PhaseDefense || room.phase == PhaseVoteExecution || room.phase == PhaseLastWords) && room.elected == p:
		content["FROM"] = p.Index
		content["DEFENSE"] = true
	default:
		content["FROM"] = p.Index
	}
	return p.makeEvent(EventMessage, content, room.audience()...)
}

// listeners widens a player slice for event addressing.
func listeners(players []*Player) []Listener {
	out := make([]Listener, len(players))
	for i, p := range players {
		out[i] = p
	}
	return out
}
