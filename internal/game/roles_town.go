package game

import "sort"

// attach wires a behavior to its role and returns the role.
func attach(r *Role, b behavior) *Role {
	b.bind(r)
	r.behavior = b
	return r
}

// inert is for roles whose power is social: no night hook at all.
type inert struct{ core }

// wiretapper is satisfied by behaviors that deliver a dawn report instead of
// a night action.
type wiretapper interface {
	wiretapReport(day int) Detail
}

type spyBehavior struct{ core }

// wiretapReport reconstructs the criminal families' movements from tonight's
// actor list. A criminal killer's destination lands under "Killing"; every
// other family member's goes under "Visiting".
func (s *spyBehavior) wiretapReport(day int) Detail {
	report := Detail{"role": string(RoleSpy)}
	for _, fam := range []struct {
		name string
		cat  Category
	}{{"Mafia", CatMafia}, {"Triad", CatTriad}} {
		feed := Detail{"Killing": []int{}}
		visiting := []int{}
		for _, mover := range s.r.me.room.actorsToday {
			dest := mover.Visits[day]
			if dest == nil || !mover.role().belongsTo(fam.cat) {
				continue
			}
			if mover.role().belongsTo(CatCriminalKilling) {
				feed["Killing"] = dest.Index
			} else {
				visiting = append(visiting, dest.Index)
			}
		}
		feed["Visiting"] = visiting
		report[fam.name] = feed
	}
	return report
}

func newSpy(me *Player, opts Constraints) *Role {
	r := newRole(RoleSpy, me, opts)
	return attach(r, &spyBehavior{})
}

func newStump(me *Player, opts Constraints) *Role {
	r := newRole(RoleStump, me, opts)
	r.votes = 0
	r.defense = LevelBasic
	return attach(r, &inert{})
}

func newMason(me *Player, opts Constraints) *Role {
	return attach(newRole(RoleMason, me, opts), &inert{})
}

type marshallBehavior struct{ core }

func (m *marshallBehavior) canActivate() bool {
	return !m.r.me.room.inLynch && m.r.opportunity > 0
}

// activate opens a group lynch: the vote that follows may execute several
// players in a row.
func (m *marshallBehavior) activate() *Event {
	r := m.r
	r.opportunity--
	r.me.room.inLynch = true
	return newEvent(EventDayEvent, Content{
		"ROLE":         string(RoleMarshall),
		"index":        r.me.Index,
		"ace-attorney": r.me.room.inCourt,
	}, r.me.room.audience()...)
}

func newMarshall(me *Player, opts Constraints) *Role {
	r := newRole(RoleMarshall, me, opts)
	r.healable = false
	return attach(r, &marshallBehavior{})
}

type mayorBehavior struct {
	core
	revealed bool
}

func (m *mayorBehavior) canActivate() bool { return !m.revealed }

func (m *mayorBehavior) activate() *Event {
	r := m.r
	m.revealed = true
	r.me.room.mayorRevealToday = true
	r.votes = 4
	return newEvent(EventDayEvent, Content{
		"ROLE":  string(RoleMayor),
		"index": r.me.Index,
	}, r.me.room.audience()...)
}

func newMayor(me *Player, opts Constraints) *Role {
	r := newRole(RoleMayor, me, opts)
	r.healable = false
	return attach(r, &mayorBehavior{})
}

func newCrier(me *Player, opts Constraints) *Role {
	return attach(newRole(RoleCrier, me, opts), &inert{})
}

type sheriffBehavior struct{ investigating }

// alignmentProbe names the hostile group the mark fights for, or nothing.
// Immunity blanks the answer before frames get a say.
func (s *sheriffBehavior) alignmentProbe(day int, investigated *Player) any {
	if investigated.role().detectionImmune {
		return nil
	}
	seen := investigated.role()
	if investigated.FramedRole != nil {
		seen = investigated.FramedRole
	}
	groups := []struct {
		cat  Category
		name string
	}{
		{CatMafia, "Mafia"},
		{CatTriad, "Triad"},
		{CatSerialKiller, "SerialKiller"},
		{CatMassMurderer, "MassMurderer"},
		{CatArsonist, "Arsonist"},
		{CatCult, "Cult"},
	}
	for _, g := range groups {
		if seen.belongsTo(g.cat) {
			return g.name
		}
	}
	return nil
}

func newSheriff(me *Player, opts Constraints) *Role {
	r := newRole(RoleSheriff, me, opts)
	b := &sheriffBehavior{}
	b.probe = b.alignmentProbe
	return attach(r, b)
}

type coronerBehavior struct{ investigating }

// autopsyProbe reads everything the body can tell: identity, the stacked
// causes of death, the last place it went and every knock it ever took.
func (c *coronerBehavior) autopsyProbe(day int, investigated *Player) any {
	if !investigated.deathAnnounced() {
		return Detail{"alive": true}
	}
	var lastTarget any
	if last := investigated.Visits[len(investigated.Visits)-1]; last != nil {
		lastTarget = last.Index
	}
	visitors := make([][]string, 0, len(investigated.VisitedBy))
	for _, callers := range investigated.VisitedBy[1:] {
		names := make([]string, len(callers))
		for i, v := range callers {
			names[i] = string(v.role().id)
		}
		sort.Strings(names)
		visitors = append(visitors, names)
	}
	return Detail{
		"role":           string(investigated.role().id),
		"cause_of_death": investigated.CauseOfDeath,
		"last_target":    lastTarget,
		"visitors":       visitors,
	}
}

func newCoroner(me *Player, opts Constraints) *Role {
	r := newRole(RoleCoroner, me, opts)
	b := &coronerBehavior{}
	b.probe = b.autopsyProbe
	return attach(r, b)
}

func newDetective(me *Player, opts Constraints) *Role {
	r := newRole(RoleDetective, me, opts)
	b := &investigating{ignoreImmune: true}
	b.probe = b.followProbe
	return attach(r, b)
}

func newLookout(me *Player, opts Constraints) *Role {
	r := newRole(RoleLookout, me, opts)
	r.canTargetSelf = true
	b := &investigating{}
	b.probe = b.watchProbe
	return attach(r, b)
}

func newInvestigator(me *Player, opts Constraints) *Role {
	r := newRole(RoleInvestigator, me, opts)
	b := &investigating{}
	b.probe = b.identityProbe
	return attach(r, b)
}

func newEscort(me *Player, opts Constraints) *Role {
	r := newRole(RoleEscort, me, opts)
	if opts.boolVal(OptRecruitable, false) {
		r.recruitableInto = map[RoleID]RoleID{
			RoleGodfather:  RoleConsort,
			RoleDragonHead: RoleLiaison,
		}
	}
	return attach(r, &blocking{})
}

type doctorBehavior struct {
	healing
	savedConvertable bool
}

// visit shields the patient from conversion for the night on top of the
// pending heal.
func (d *doctorBehavior) visit(day int, patient *Player) []AbilityResult {
	data := d.tend(day, patient)
	dest := d.r.me.Visits[day]
	d.savedConvertable = dest.role().convertable
	dest.role().convertable = false
	return one(data)
}

func (d *doctorBehavior) afterNight() {
	if patient := d.r.me.Visits[d.r.me.room.day]; patient != nil {
		patient.role().convertable = d.savedConvertable
	}
}

func newDoctor(me *Player, opts Constraints) *Role {
	return attach(newRole(RoleDoctor, me, opts), &doctorBehavior{})
}

type bodyguardBehavior struct {
	visiting
	savedConvertable bool
}

func (b *bodyguardBehavior) visit(day int, guarded *Player) []AbilityResult {
	data := b.baseVisit(day, guarded)
	dest := b.r.me.Visits[day]
	dest.BodyguardedBy = append(dest.BodyguardedBy, b.r.me)
	b.savedConvertable = dest.role().convertable
	dest.role().convertable = false
	return one(data)
}

// guardFrom trades blows at the guarded door. A bodyguard watching a
// bodyguard passes the duty down; the one who takes the fight dies at his
// post and cannot be healed.
func (b *bodyguardBehavior) guardFrom(attacker *Player) AbilityResult {
	r := b.r
	me := r.me
	if deeper := popGuard(me); deeper != nil {
		gr, _ := deeper.role().guardFrom(attacker)
		return gr
	}
	r.healable = false
	attacker.commitCrime(CrimeMurder)
	guarded := me.Visits[me.room.day]
	data := result()
	data.Sound = string(RoleBodyguard)
	data.set(me, Detail{
		"role": string(RoleBodyguard),
		"type": ResultKilled,
		"by":   "DUTY",
		"from": string(attacker.role().id),
	})
	data.set(guarded, Detail{
		"type": ResultBodyguard,
		"from": string(attacker.role().id),
	})
	switch {
	case len(attacker.BodyguardedBy) > 0:
		counter := popGuard(attacker)
		cr, _ := counter.role().guardFrom(me)
		data.overlay(cr)
		data.mergeInto(me, Detail{"by": "DUTY"})
	case r.canKillRole(attacker.role()):
		if attacker.isHealed() {
			data.overlay(healRescue(attacker, string(RoleBodyguard)))
		} else {
			me.commitCrime(CrimeMurder)
			data.set(attacker, Detail{
				"role": string(attacker.role().id),
				"type": ResultKilled,
				"by":   string(RoleBodyguard),
			})
		}
	default:
		data.set(attacker, Detail{
			"type": ResultAlmostDied,
			"by":   string(RoleBodyguard),
		})
	}
	return *data
}

func (b *bodyguardBehavior) afterNight() {
	if guarded := b.r.me.Visits[b.r.me.room.day]; guarded != nil {
		guarded.role().convertable = b.savedConvertable
	}
}

func newBodyguard(me *Player, opts Constraints) *Role {
	r := newRole(RoleBodyguard, me, opts)
	r.offense = LevelStrong
	return attach(r, &bodyguardBehavior{})
}

func newJailor(me *Player, opts Constraints) *Role {
	r := newRole(RoleJailor, me, opts)
	r.opportunity = 2
	r.offense = LevelAbsolute
	return attach(r, &jailing{})
}

type masonLeaderBehavior struct {
	visiting
	savedConvertable bool
}

// visit recruits the worthy and lynches cultists where they stand. Anybody
// else gets an offer resolved by the late-night second task.
func (ml *masonLeaderBehavior) visit(day int, target *Player) []AbilityResult {
	r := ml.r
	me := r.me
	data := ml.baseVisit(day, target)
	r.opportunity--
	dest := me.Visits[day]
	ml.savedConvertable = dest.role().convertable
	dest.role().convertable = false
	if dest == me {
		return one(data)
	}
	me.commitCrime(CrimeSoliciting)
	if !dest.role().belongsTo(CatCult) {
		r.doSecondTask = true
		return one(data)
	}
	me.commitCrime(CrimeTrespass)
	if guard := popGuard(dest); guard != nil {
		gr, _ := guard.role().guardFrom(me)
		return one(&gr)
	}
	data.Sound = string(RoleMasonLeader)
	if r.canKill(dest) {
		data.mergeInto(me, Detail{"type": ResultVisit, "success": true})
		if dest.isHealed() {
			data.overlay(healRescue(dest, string(RoleMasonLeader)))
		} else {
			me.commitCrime(CrimeMurder)
			data.set(dest, Detail{"type": ResultKilled, "by": string(RoleMasonLeader)})
		}
	} else {
		data.mergeInto(me, Detail{"type": ResultVisit, "success": false})
		data.set(dest, Detail{"type": ResultAttacked})
	}
	return one(data)
}

func (ml *masonLeaderBehavior) secondTask(day int) []AbilityResult {
	r := ml.r
	offered := r.me.Visits[day]
	if offered == nil || !offered.alive() {
		return nil
	}
	data := result()
	data.set(r.me, Detail{})
	data.set(offered, Detail{})
	if offered.role().id == RoleCitizen {
		data.set(offered, Detail{
			"type": ResultConverted,
			"by":   string(RoleMasonLeader),
			"into": string(RoleMason),
		})
		for _, member := range r.me.room.privateChat[TeamMason] {
			data.set(member, Detail{
				"type":  ResultJoined,
				"index": offered.Index,
				"into":  string(RoleMason),
			})
		}
	} else {
		data.set(r.me, Detail{
			"role":    string(RoleMasonLeader),
			"type":    ResultSecondTask,
			"success": false,
		})
		data.set(offered, Detail{"type": ResultContacted, "by": nil})
	}
	return one(data)
}

func (ml *masonLeaderBehavior) afterNight() {
	if offered := ml.r.me.Visits[ml.r.me.room.day]; offered != nil {
		offered.role().convertable = ml.savedConvertable
	}
}

func newMasonLeader(me *Player, opts Constraints) *Role {
	r := newRole(RoleMasonLeader, me, opts)
	r.offense = LevelBasic
	r.opportunity = unlimitedUses
	return attach(r, &masonLeaderBehavior{})
}

type veteranBehavior struct{ activeOnly }

// act goes on alert: everyone who steps through the door tonight except a
// Lookout gets shot at.
func (v *veteranBehavior) act(day int) []AbilityResult {
	r := v.r
	me := r.me
	r.opportunity--
	me.commitCrime(CrimeDestructionOfProperty)
	r.defense = LevelStrong
	events := []AbilityResult{*result().set(me, Detail{"type": ResultAct})}
	for _, visitor := range me.room.actorsToday {
		if visitor.Visits[day] != me || visitor.role().id == RoleLookout {
			continue
		}
		me.addVisitor(day, visitor)
		event := result()
		event.Sound = string(RoleVeteran)
		switch {
		case len(visitor.BodyguardedBy) > 0:
			gr, _ := popGuard(visitor).role().guardFrom(me)
			event = &gr
		case r.canKillRole(visitor.role()):
			if visitor.isHealed() {
				event.overlay(healRescue(visitor, string(RoleVeteran)))
			} else {
				me.commitCrime(CrimeMurder)
				event.set(visitor, Detail{"type": ResultKilled, "by": string(RoleVeteran)})
			}
		default:
			event.set(visitor, Detail{"type": ResultAlmostDied, "by": string(RoleVeteran)})
		}
		events = append(events, *event)
	}
	return events
}

func (v *veteranBehavior) afterNight() { v.r.defense = LevelNone }

func newVeteran(me *Player, opts Constraints) *Role {
	return attach(newRole(RoleVeteran, me, opts), &veteranBehavior{})
}

type vigilanteBehavior struct{ killingVisiting }

// visit shoots like any killer, then reckons with the result: gunning down a
// townie costs the Vigilante his life, or his bullets when configured so.
func (v *vigilanteBehavior) visit(day int, target *Player) []AbilityResult {
	r := v.r
	data := v.strike(day, target)
	dest := r.me.Visits[day]
	d, hit := data.detailFor(dest)
	if dest == r.me || !dest.role().belongsTo(CatTown) || !hit || d["type"] != ResultKilled {
		return one(data)
	}
	remorse := result()
	if r.opts.stringVal(OptTargetIsTown, FailSuicide) == LoseAllBullets {
		r.opportunity = 0
		remorse.set(r.me, Detail{"role": string(RoleVigilante), "type": LoseAllBullets})
	} else {
		remorse.Sound = suicideSound
		remorse.set(r.me, Detail{
			"role": string(RoleVigilante),
			"type": ResultKilled,
			"by":   "FEELING_GUILTY_VIGILANTE",
		})
	}
	return []AbilityResult{*data, *remorse}
}

func newVigilante(me *Player, opts Constraints) *Role {
	r := newRole(RoleVigilante, me, opts)
	r.offense = LevelBasic
	r.restTill = 1
	return attach(r, &vigilanteBehavior{})
}

func newCitizen(me *Player, opts Constraints) *Role {
	r := newRole(RoleCitizen, me, opts)
	r.opportunity = 1
	if opts.boolVal(OptRecruitable, true) {
		r.recruitableInto = map[RoleID]RoleID{
			RoleGodfather:   RoleMafioso,
			RoleDragonHead:  RoleEnforcer,
			RoleMasonLeader: RoleMason,
		}
	}
	return attach(r, &surviving{})
}
