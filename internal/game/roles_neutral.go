package game

type amnesiacBehavior struct{ visiting }

// visit remembers the grave's trade. The conversion itself happens when the
// resolver applies the detail, so a block still cancels it.
func (a *amnesiacBehavior) visit(day int, remembered *Player) []AbilityResult {
	data := a.baseVisit(day, remembered)
	data.set(a.r.me, Detail{
		"type":  ResultConverted,
		"into":  string(a.r.me.Visits[day].role().id),
		"notes": string(RoleAmnesiac),
	})
	return one(data)
}

func newAmnesiac(me *Player, opts Constraints) *Role {
	r := newRole(RoleAmnesiac, me, opts)
	r.blockable = false
	return attach(r, &amnesiacBehavior{})
}

type arsonistBehavior struct {
	visiting
	blockedBy []*Player
}

// visit douses the mark in oil. Oil does nothing until the Arsonist stays
// home and lights the match.
func (a *arsonistBehavior) visit(day int, doused *Player) []AbilityResult {
	r := a.r
	data := a.baseVisit(day, doused)
	dest := r.me.Visits[day]
	dest.Oiled = true
	data.mergeInto(r.me, Detail{
		"type":    ResultVisit,
		"success": true,
		"index":   dest.Index,
	})
	r.me.commitCrime(CrimeTrespass)
	if r.opts.boolVal(OptNotified, false) {
		data.set(dest, Detail{"type": ResultNotified, "by": string(RoleArsonist)})
	}
	return one(data)
}

// whenInactive splashes oil back onto whoever blocked the Arsonist tonight.
// A night in jail suppresses even that.
func (a *arsonistBehavior) whenInactive(day int) []AbilityResult {
	r := a.r
	if r.me.JailedBy != nil && r.me.JailedBy.Act[day] {
		return nil
	}
	if len(a.blockedBy) == 0 {
		return nil
	}
	events := make([]AbilityResult, 0, len(a.blockedBy))
	for _, blocker := range a.blockedBy {
		blocker.Oiled = true
		splash := result()
		splash.set(r.me, Detail{
			"role":    string(RoleArsonist),
			"type":    ResultVisit,
			"success": true,
			"index":   blocker.Index,
		})
		if r.opts.boolVal(OptNotified, false) {
			splash.set(blocker, Detail{"type": ResultNotified, "by": string(RoleArsonist)})
		}
		events = append(events, *splash)
	}
	return events
}

// act ignites every oiled player and whoever they went to see. Heals can
// pull a victim out; guards and defense cannot.
func (a *arsonistBehavior) act(day int) []AbilityResult {
	r := a.r
	me := r.me
	me.commitCrime(CrimeDestructionOfProperty)
	me.commitCrime(CrimeArson)
	seen := map[*Player]bool{}
	var doused []*Player
	for _, v := range me.room.actorsToday {
		if v.Oiled && !seen[v] {
			seen[v] = true
			doused = append(doused, v)
		}
	}
	victims := append([]*Player(nil), doused...)
	for _, v := range doused {
		if dest := v.Visits[day]; dest != nil && !seen[dest] {
			seen[dest] = true
			victims = append(victims, dest)
		}
	}
	data := result()
	data.Sound = string(RoleArsonist)
	data.set(me, Detail{"role": string(RoleArsonist), "type": ResultAct})
	for _, v := range victims {
		if v.isHealed() {
			data.absorb(healRescue(v, string(RoleArsonist)))
		} else {
			me.commitCrime(CrimeMurder)
			data.set(v, Detail{"type": ResultKilled, "by": string(RoleArsonist)})
		}
	}
	return one(data)
}

func (a *arsonistBehavior) respondToBlock(blocker *Player) {
	for _, b := range a.blockedBy {
		if b == blocker {
			return
		}
	}
	a.blockedBy = append(a.blockedBy, blocker)
}

func (a *arsonistBehavior) afterNight() {
	a.blockedBy = a.blockedBy[:0]
	a.r.me.Oiled = false
}

func newArsonist(me *Player, opts Constraints) *Role {
	r := newRole(RoleArsonist, me, opts)
	r.offense = LevelAbsolute
	r.defense = LevelBasic
	r.opportunity = unlimitedUses
	return attach(r, &arsonistBehavior{})
}

type auditorBehavior struct{ visiting }

// visit retires the mark into a harmless copy of their own side. Auditing
// the mirror makes the Auditor a Stump.
func (a *auditorBehavior) visit(day int, audited *Player) []AbilityResult {
	r := a.r
	data := a.baseVisit(day, audited)
	dest := r.me.Visits[day]
	target := dest.role()
	switch {
	case target == r:
		data.mergeInto(r.me, Detail{"type": ResultConverted, "into": string(RoleStump)})
	case !target.convertable || target.defense > LevelNone:
		data.mergeInto(r.me, Detail{"type": ResultVisit, "success": false})
	default:
		r.opportunity--
		into := RoleScumbag
		switch {
		case target.belongsTo(CatTown):
			into = RoleCitizen
		case target.belongsTo(CatMafia):
			into = RoleMafioso
		case target.belongsTo(CatTriad):
			into = RoleEnforcer
		}
		data.mergeInto(r.me, Detail{
			"type":    ResultVisit,
			"success": true,
			"index":   dest.Index,
			"into":    string(into),
		})
		data.set(dest, Detail{
			"type": ResultConverted,
			"by":   string(RoleAuditor),
			"into": string(into),
		})
	}
	return one(data)
}

func newAuditor(me *Player, opts Constraints) *Role {
	return attach(newRole(RoleAuditor, me, opts), &auditorBehavior{})
}

type counselBehavior struct {
	investigating
	savedImmunity bool
}

// visit studies the client and scrubs them from detection for the night.
func (c *counselBehavior) visit(day int, client *Player) []AbilityResult {
	data := c.inspect(day, client)
	hired := c.r.me.Visits[day]
	c.savedImmunity = hired.role().detectionImmune
	hired.role().detectionImmune = true
	return one(data)
}

func (c *counselBehavior) afterNight() {
	if hired := c.r.me.Visits[c.r.me.room.day]; hired != nil {
		hired.role().detectionImmune = c.savedImmunity
	}
}

// setGoalTarget drafts up to three clients the Counsel must keep off the
// gallows. Draws repeat, so the list can come up short.
func (c *counselBehavior) setGoalTarget() {
	r := c.r
	var pool []*Player
	for _, p := range r.me.room.remaining() {
		if p != r.me {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		return
	}
	for i := 0; i < 3; i++ {
		pick := pool[r.me.room.rng.Intn(len(pool))]
		already := false
		for _, t := range r.goalTargets {
			if t == pick {
				already = true
				break
			}
		}
		if !already {
			r.goalTargets = append(r.goalTargets, pick)
		}
	}
}

func newCounsel(me *Player, opts Constraints) *Role {
	r := newRole(RoleCounsel, me, opts)
	b := &counselBehavior{}
	b.probe = b.identityProbe
	return attach(r, b)
}

type executionerBehavior struct{ core }

func (e *executionerBehavior) setGoalTarget() {
	r := e.r
	townOnly := r.opts.boolVal(OptTargetIsTown, true)
	var pool []*Player
	for _, p := range r.me.room.lineup {
		if p == r.me {
			continue
		}
		if townOnly && !p.role().belongsTo(CatTown) {
			continue
		}
		pool = append(pool, p)
	}
	if len(pool) > 0 {
		r.goalTargets = []*Player{pool[r.me.room.rng.Intn(len(pool))]}
	}
}

func newExecutioner(me *Player, opts Constraints) *Role {
	r := newRole(RoleExecutioner, me, opts)
	r.defense = LevelBasic
	return attach(r, &executionerBehavior{})
}

func newJester(me *Player, opts Constraints) *Role {
	return attach(newRole(RoleJester, me, opts), &inert{})
}

type judgeBehavior struct{ core }

func (j *judgeBehavior) canActivate() bool {
	room := j.r.me.room
	return !room.inCourt && room.day > j.r.restTill && j.r.opportunity > 0
}

// activate calls a court in session: votes go anonymous and the Judge's own
// counts four times until dusk.
func (j *judgeBehavior) activate() *Event {
	r := j.r
	r.opportunity--
	r.votes = 4
	r.me.room.inCourt = true
	r.restTill = r.me.room.day + 1
	return newEvent(EventDayEvent, Content{
		"ROLE":         string(RoleJudge),
		"ace-attorney": r.me.room.inLynch,
	}, r.me.room.audience()...)
}

func (j *judgeBehavior) afterNight() { j.r.votes = 1 }

func newJudge(me *Player, opts Constraints) *Role {
	return attach(newRole(RoleJudge, me, opts), &judgeBehavior{})
}

func newScumbag(me *Player, opts Constraints) *Role {
	r := newRole(RoleScumbag, me, opts)
	r.recruitableInto = map[RoleID]RoleID{
		RoleGodfather:  RoleMafioso,
		RoleDragonHead: RoleEnforcer,
	}
	return attach(r, &inert{})
}

type serialKillerBehavior struct {
	killingVisiting
	blockedBy []*Player
}

// whenInactive turns on the blocker. Jailing counts as a block worth dying
// for only when the jailor leaves the cell door shut.
func (sk *serialKillerBehavior) whenInactive(day int) []AbilityResult {
	r := sk.r
	me := r.me
	if me.JailedBy != nil && me.JailedBy.Act[day] {
		return nil
	}
	if len(sk.blockedBy) == 0 {
		return nil
	}
	blocker := me.JailedBy
	if blocker == nil {
		blocker = sk.blockedBy[0]
	}
	note := "kill_blocking"
	if blocker.role().belongsTo(CatJailing) {
		note = "jailbreak"
	}
	data := result()
	data.Sound = string(RoleSerialKiller)
	data.set(me, Detail{"role": string(RoleSerialKiller), note: true})
	data.set(blocker, Detail{
		"type":  ResultKilled,
		"by":    string(RoleSerialKiller),
		"notes": note,
	})
	return one(data)
}

func (sk *serialKillerBehavior) respondToBlock(blocker *Player) {
	for _, b := range sk.blockedBy {
		if b == blocker {
			return
		}
	}
	sk.blockedBy = append(sk.blockedBy, blocker)
}

func (sk *serialKillerBehavior) afterNight() { sk.blockedBy = sk.blockedBy[:0] }

func newSerialKiller(me *Player, opts Constraints) *Role {
	r := newRole(RoleSerialKiller, me, opts)
	r.opportunity = unlimitedUses
	r.offense = LevelBasic
	r.defense = LevelBasic
	r.detectionImmune = true
	return attach(r, &serialKillerBehavior{})
}

func newSurvivor(me *Player, opts Constraints) *Role {
	return attach(newRole(RoleSurvivor, me, opts), &surviving{})
}

type witchBehavior struct {
	visiting
	secondTarget *Player
}

func (w *witchBehavior) orderSecondTarget(target *Player) { w.secondTarget = target }

// visit puppets the mark toward the second target. Without a destination
// the Witch stays home.
func (w *witchBehavior) visit(day int, controlled *Player) []AbilityResult {
	r := w.r
	destination := w.secondTarget
	if destination == nil {
		return nil
	}
	data := w.baseVisit(day, controlled)
	dest := r.me.Visits[day]
	dest.Visits[day] = destination
	dest.ControlledBy = r.me
	data.mergeInto(r.me, Detail{
		"type":        ResultVisit,
		"destination": destination.Index,
	})
	if r.opts.boolVal(OptNotified, false) {
		data.set(dest, Detail{"type": ResultNotified, "by": string(RoleWitch)})
	}
	return one(data)
}

func (w *witchBehavior) afterNight() {
	if dest := w.r.me.Visits[w.r.me.room.day]; dest != nil {
		dest.ControlledBy = nil
	}
	w.secondTarget = nil
}

func newWitch(me *Player, opts Constraints) *Role {
	r := newRole(RoleWitch, me, opts)
	r.canTargetSelf = true
	return attach(r, &witchBehavior{})
}

type massMurdererBehavior struct{ visiting }

// visit sprees through the mark's house: everyone who called there dies,
// and the stay-at-home host with them. A posted bodyguard stops the whole
// spree; a big haul forces the murderer to lie low.
func (mm *massMurdererBehavior) visit(day int, landlord *Player) []AbilityResult {
	r := mm.r
	me := r.me
	data := mm.baseVisit(day, landlord)
	var victims []*Player
	for _, v := range landlord.VisitedBy[day] {
		if v != me {
			victims = append(victims, v)
		}
	}
	if landlord.Visits[day] == nil && landlord != me {
		victims = append(victims, landlord)
	}
	data.Sound = string(RoleMassMurderer)
	data.Length = len(victims)
	for _, v := range victims {
		if guard := popGuard(v); guard != nil {
			gr, _ := guard.role().guardFrom(me)
			return one(&gr)
		}
	}
	for _, v := range victims {
		if !r.canKillRole(v.role()) {
			continue
		}
		if v.isHealed() {
			data.absorb(healRescue(v, string(RoleMassMurderer)))
		} else {
			data.set(v, Detail{"type": ResultKilled, "by": string(RoleMassMurderer)})
		}
	}
	if len(victims) > 1 {
		r.restTill = day + r.opts.intVal(OptDelay, 1)
	}
	return one(data)
}

func newMassMurderer(me *Player, opts Constraints) *Role {
	r := newRole(RoleMassMurderer, me, opts)
	r.offense = LevelBasic
	r.defense = LevelBasic
	r.canTargetSelf = true
	return attach(r, &massMurdererBehavior{})
}
