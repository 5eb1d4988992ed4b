package game

import "sort"

// standings sorts the living into the sides the verdicts weigh. The
// scheming neutrals count on their own line; killers and cultists are
// already covered by theirs.
type standings struct {
	town          []*Player
	mafia         []*Player
	triad         []*Player
	arsonists     []*Player
	serialKillers []*Player
	massMurderers []*Player
	cult          []*Player
	neutralEvil   []*Player
}

func (r *Room) currentStandings() standings {
	var s standings
	for _, p := range r.remaining() {
		role := p.role()
		if role.belongsTo(CatTown) {
			s.town = append(s.town, p)
		}
		if role.belongsTo(CatMafia) {
			s.mafia = append(s.mafia, p)
		}
		if role.belongsTo(CatTriad) {
			s.triad = append(s.triad, p)
		}
		if role.belongsTo(CatArsonist) {
			s.arsonists = append(s.arsonists, p)
		}
		if role.belongsTo(CatSerialKiller) {
			s.serialKillers = append(s.serialKillers, p)
		}
		if role.belongsTo(CatMassMurderer) {
			s.massMurderers = append(s.massMurderers, p)
		}
		if role.belongsTo(CatCult) {
			s.cult = append(s.cult, p)
		}
		if role.belongsTo(CatEvilNeutral) && !role.belongsTo(CatNeutralKilling) && !role.belongsTo(CatCult) {
			s.neutralEvil = append(s.neutralEvil, p)
		}
	}
	return s
}

// gameOver decides whether the board can still move. Fewer than three
// alive always ends it; otherwise the strongest side left standing must
// have nobody left to fight.
func (r *Room) gameOver() bool {
	s := r.currentStandings()
	killers := len(s.arsonists) + len(s.serialKillers) + len(s.massMurderers)
	switch {
	case len(r.remaining()) < 3:
		return true
	case len(s.town) > 0:
		return len(s.mafia)+len(s.triad)+killers+len(s.cult)+len(s.neutralEvil) == 0
	case len(s.mafia) > 0:
		return len(s.triad) == 0 && len(s.cult) == 0 && killers == 0
	case len(s.triad) > 0:
		return len(s.cult) == 0 && killers == 0
	case len(s.cult) > 0:
		return killers == 0
	case killers > 0:
		sides := 0
		if len(s.arsonists) > 0 {
			sides++
		}
		if len(s.serialKillers) > 0 {
			sides++
		}
		if len(s.massMurderers) > 0 {
			sides++
		}
		return sides < 3
	}
	return true
}

// winThemAll credits the win to everyone of the category still in the
// room, the dead included when the side carries its fallen.
func (r *Room) winThemAll(cat Category, includeDead bool) {
	pool := r.lineup
	if !includeDead {
		pool = r.remaining()
	}
	for _, p := range pool {
		if p.role().belongsTo(cat) && p.user != nil && r.isMember(p.user) {
			p.win()
		}
	}
}

func (r *Room) isMember(s *Session) bool {
	for _, m := range r.members {
		if m == s {
			return true
		}
	}
	return false
}

// soloPriority ranks whose name headlines when no faction claimed the day.
// Lower goes first.
func soloPriority(role *Role) int {
	switch role.id {
	case RoleScumbag:
		return 0
	case RoleWitch:
		return 1
	case RoleJudge:
		return 2
	case RoleAuditor:
		return 3
	case RoleExecutioner:
		return 4
	case RoleJester:
		return 5
	case RoleSurvivor:
		return 6
	case RoleAmnesiac:
		return 7
	}
	return 8
}

// finishGame settles who won and reads the result out in stages: the end
// statement, the headline winner, then every winner seat by seat.
func (r *Room) finishGame() {
	r.turnPhase(PhaseFinishing)
	r.log.Infof("room %d: finishing a game", r.ID)

	s := r.currentStandings()
	mainWinner := ""
	winAlone := false

	// Two left and one is a plain Citizen: the town talked it out.
	citizenTie := false
	if len(r.remaining()) == 2 {
		for _, p := range r.remaining() {
			if p.role().id == RoleCitizen {
				r.winThemAll(CatTown, true)
				mainWinner = string(TeamTown)
				citizenTie = true
				break
			}
		}
	}
	if !citizenTie {
		claims := []struct {
			standing    []*Player
			cat         Category
			name        Team
			includeDead bool
		}{
			{s.arsonists, CatArsonist, TeamArsonist, false},
			{s.serialKillers, CatSerialKiller, TeamSerialKiller, false},
			{s.massMurderers, CatMassMurderer, TeamMassMurderer, false},
			{s.triad, CatTriad, TeamTriad, true},
			{s.mafia, CatMafia, TeamMafia, true},
			{s.cult, CatCult, TeamCult, true},
		}
		claimed := false
		for _, c := range claims {
			if len(c.standing) > 0 {
				r.winThemAll(c.cat, c.includeDead)
				mainWinner = string(c.name)
				claimed = true
				break
			}
		}
		if !claimed && len(s.town) > 0 {
			r.winThemAll(CatTown, true)
			mainWinner = string(TeamTown)
		}
		r.winThemAll(CatEvilNeutral, false)
	}

	// The self-serving roles win by simply standing at the end.
	for _, id := range []RoleID{RoleSurvivor, RoleAmnesiac} {
		for _, p := range r.remaining() {
			if p.role().id == id && p.user != nil && r.isMember(p.user) {
				p.win()
			}
		}
	}
	// An Executioner outliving a hanged goal got exactly what they wanted.
	for _, p := range r.lineup {
		if !p.alive() || p.role().id != RoleExecutioner {
			continue
		}
		if p.user == nil || !r.isMember(p.user) {
			continue
		}
		goals := p.role().goalTargets
		if len(goals) == 0 {
			continue
		}
		for _, cause := range goals[0].CauseOfDeath {
			if cause == deathByVerdict {
				p.win()
				break
			}
		}
	}

	if mainWinner == "" && len(r.winners) > 0 {
		first := r.winners[0]
		for _, w := range r.winners[1:] {
			if soloPriority(w.role) < soloPriority(first.role) {
				first = w
			}
		}
		winAlone = len(r.winners) == 1 &&
			!first.role.belongsTo(CatTown) && !first.role.belongsTo(CatMafia) &&
			!first.role.belongsTo(CatTriad) && !first.role.belongsTo(CatCult)
		if team := first.role.Team(); team == TeamNone {
			mainWinner = string(first.role.id)
		} else {
			mainWinner = string(team)
		}
	}

	r.emit(newEvent(EventFinish, Content{"end statement": true}, r.audience()...))
	r.pause(r.timing.ShortPause)
	var headline any
	if mainWinner != "" {
		headline = mainWinner
	}
	r.emit(newEvent(EventFinish, Content{
		"main_winner": headline,
		"win_alone":   winAlone,
	}, r.audience()...))
	r.pause(r.timing.ShortPause)

	ranked := append([]victory(nil), r.winners...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].player.Index < ranked[j].player.Index
	})
	for _, w := range ranked {
		r.emit(newEvent(EventFinish, Content{
			"index": w.player.Index,
			"role":  string(w.role.id),
		}, r.audience()...))
		r.pause(r.timing.ShortPause)
	}
}
