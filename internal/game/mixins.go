package game

import "sort"

// Shared behavior building blocks. Concrete roles embed these and override
// the hooks they specialize; embedded chains call up explicitly.

// core carries the back-pointer every behavior needs.
type core struct {
	r *Role
}

func (c *core) bind(r *Role) { c.r = r }

// forcedVisit is the bare visit: resolve hiding redirection, record the
// visit, acknowledge the role to the actor. Controlled players out of
// charges perform exactly this and nothing more.
func forcedVisit(p *Player, day int, target *Player) *AbilityResult {
	dest := target
	if target.IsBehind != nil {
		dest = target.IsBehind
	}
	p.Visits[day] = dest
	if !dest.deathAnnounced() {
		dest.addVisitor(day, p)
	}
	return result().set(p, Detail{"role": string(p.role().id)})
}

// popHealer removes and returns the most recent pending heal on target.
func popHealer(target *Player) *Player {
	if n := len(target.HealedBy); n > 0 {
		h := target.HealedBy[n-1]
		target.HealedBy = target.HealedBy[:n-1]
		return h
	}
	return nil
}

// popGuard removes and returns the most recent bodyguard posted on target.
func popGuard(target *Player) *Player {
	if n := len(target.BodyguardedBy); n > 0 {
		g := target.BodyguardedBy[n-1]
		target.BodyguardedBy = target.BodyguardedBy[:n-1]
		return g
	}
	return nil
}

// healRescue asks the last pending healer to save target from attacker,
// returning the heal outcome. Callers must have checked isHealed.
func healRescue(target *Player, attacker string) AbilityResult {
	healer := popHealer(target)
	if healer == nil {
		return AbilityResult{}
	}
	if hr, ok := healer.role().healAgainst(attacker); ok {
		return hr
	}
	return AbilityResult{}
}

/* ---------- visiting ---------- */

type visiting struct {
	core
}

func (v *visiting) visit(day int, target *Player) []AbilityResult {
	return one(v.baseVisit(day, target))
}

func (v *visiting) baseVisit(day int, target *Player) *AbilityResult {
	return forcedVisit(v.r.me, day, target)
}

/* ---------- activeOnly ---------- */

type activeOnly struct {
	core
}

func (a *activeOnly) act(day int) []AbilityResult {
	return one(a.baseAct(day))
}

func (a *activeOnly) baseAct(day int) *AbilityResult {
	return result().set(a.r.me, Detail{"role": string(a.r.id)})
}

/* ---------- killingVisiting ---------- */

type killingVisiting struct {
	visiting
}

func (kv *killingVisiting) visit(day int, target *Player) []AbilityResult {
	return one(kv.strike(day, target))
}

// strike is the whole basic-attack dance: redirection traps, bodyguard
// interception, the offense/defense duel and the heal stack.
func (kv *killingVisiting) strike(day int, target *Player) *AbilityResult {
	r := kv.r
	me := r.me
	data := kv.baseVisit(day, target)
	r.opportunity--
	dest := me.Visits[day]
	if dest == me {
		// Redirected onto our own knife. The town hears a Beguiler
		// either way; the controller decides who takes the blame.
		data.Sound = string(RoleBeguiler)
		public := string(RoleBeguiler)
		byRole := string(RoleBeguiler)
		if c := me.ControlledBy; c != nil {
			byRole = string(c.role().id)
			if c.role().id == RoleWitch {
				public = string(RoleWitch)
			}
		}
		if r.canKillRole(r) {
			data.mergeInto(me, Detail{
				"type":      ResultKilled,
				"by":        byRole,
				"by_public": public,
			})
			if c := me.ControlledBy; c != nil && c.role().belongsTo(CatHiding) {
				c.commitCrime(CrimeMurder)
			}
		} else {
			data.mergeInto(me, Detail{"almost_died": true, "by": public})
		}
		return data
	}
	me.commitCrime(CrimeTrespass)
	if guard := popGuard(dest); guard != nil {
		gr, _ := guard.role().guardFrom(me)
		return &gr
	}
	data.Sound = string(r.id)
	if r.canKill(dest) {
		data.mergeInto(me, Detail{"type": ResultVisit, "success": true})
		if dest.isHealed() {
			data.overlay(healRescue(dest, string(r.id)))
		} else {
			me.commitCrime(CrimeMurder)
			data.set(dest, Detail{"type": ResultKilled, "by": string(r.id)})
		}
	} else {
		data.mergeInto(me, Detail{"type": ResultVisit, "success": false})
		data.set(dest, Detail{"type": ResultAttacked})
	}
	return data
}

/* ---------- criminalKilling ---------- */

type criminalKilling struct {
	killingVisiting
}

func (ck *criminalKilling) visit(day int, target *Player) []AbilityResult {
	return one(ck.criminalStrike(day, target))
}

// criminalStrike masks the family killer behind the Mafioso name. A
// bodyguard firefight keeps its own sound.
func (ck *criminalKilling) criminalStrike(day int, target *Player) *AbilityResult {
	data := ck.strike(day, target)
	if data.Sound == string(RoleBodyguard) {
		return data
	}
	data.Sound = string(RoleMafioso)
	if dest := ck.r.me.Visits[day]; dest != nil {
		data.mergeInto(dest, Detail{"by_public": string(RoleMafioso)})
	}
	return data
}

/* ---------- boss ---------- */

type boss struct {
	criminalKilling
	recruitTarget *Player
}

func (b *boss) orderRecruit(target *Player) {
	b.recruitTarget = target
	b.r.doSecondTask = true
}

func (b *boss) secondTask(day int) []AbilityResult {
	r := b.r
	if b.recruitTarget == nil {
		return nil
	}
	offered := b.recruitTarget
	if offered.IsBehind != nil {
		offered = offered.IsBehind
	}
	data := result()
	if into, ok := offered.role().recruitableInto[r.id]; ok {
		data.set(offered, Detail{
			"type": ResultConverted,
			"by":   string(r.id),
			"into": string(into),
		})
		for _, member := range r.me.room.privateChat[r.Team()] {
			data.set(member, Detail{
				"type":  ResultJoined,
				"index": offered.Index,
				"into":  string(into),
			})
		}
	} else {
		data.set(r.me, Detail{
			"role":    string(r.id),
			"type":    ResultSecondTask,
			"success": false,
		})
		data.set(offered, Detail{"type": ResultContacted, "by": nil})
	}
	return one(data)
}

func (b *boss) afterNight() {
	b.recruitTarget = nil
}

/* ---------- healing ---------- */

type healing struct {
	visiting
}

func (h *healing) visit(day int, target *Player) []AbilityResult {
	return one(h.tend(day, target))
}

func (h *healing) tend(day int, target *Player) *AbilityResult {
	data := h.baseVisit(day, target)
	h.r.me.Visits[day].HealedBy = append(h.r.me.Visits[day].HealedBy, h.r.me)
	return data
}

func (h *healing) healAgainst(attacker string) AbilityResult {
	return *h.baseHeal(attacker)
}

func (h *healing) baseHeal(attacker string) *AbilityResult {
	r := h.r
	data := result()
	data.set(r.me, Detail{"role": string(r.id), "success": true})
	data.set(r.me.Visits[r.me.room.day], Detail{"type": ResultHealed, "against": attacker})
	return data
}

/* ---------- blocking ---------- */

type blocking struct {
	visiting
}

func (bl *blocking) visit(day int, target *Player) []AbilityResult {
	r := bl.r
	data := bl.baseVisit(day, target)
	blocked := r.me.Visits[day]
	switch {
	case blocked.role().id == RoleVeteran && blocked.Act[day]:
		// The door was a trap. Nothing to report; the alert handles us.
	case blocked.role().blockable:
		blocked.Visits[day] = nil
		blocked.Act[day] = false
		if blocked.role().belongsTo(CatTown) {
			r.me.commitCrime(CrimeDisturbingThePeace)
		}
		data.set(blocked, Detail{"type": ResultBlocked, "success": true})
		blocked.role().respondToBlock(r.me)
	}
	r.me.commitCrime(CrimeSoliciting)
	return one(data)
}

/* ---------- hiding ---------- */

type hiding struct {
	visiting
}

func (h *hiding) visit(day int, front *Player) []AbilityResult {
	r := h.r
	data := h.baseVisit(day, front)
	r.me.commitCrime(CrimeTrespass)
	r.opportunity--
	r.me.IsBehind = r.me.Visits[day]
	r.me.Visits[day].ControlledBy = r.me
	if r.opts.boolVal(OptNotified, true) {
		data.set(r.me.Visits[day], Detail{"type": ResultNotified, "by": "Hiding"})
	}
	return one(data)
}

func (h *hiding) afterNight() {
	r := h.r
	r.me.IsBehind = nil
	if front := r.me.Visits[r.me.room.day]; front != nil {
		front.ControlledBy = nil
	}
}

/* ---------- threatening ---------- */

type threatening struct {
	visiting
}

func (t *threatening) visit(day int, target *Player) []AbilityResult {
	data := t.baseVisit(day, target)
	t.r.me.Visits[day].BlackmailedOn = day + 1
	data.set(t.r.me.Visits[day], Detail{"type": ResultThreatened})
	return one(data)
}

/* ---------- sanitizing ---------- */

type sanitizing struct {
	visiting
}

func (s *sanitizing) visit(day int, target *Player) []AbilityResult {
	r := s.r
	data := s.baseVisit(day, target)
	r.me.commitCrime(CrimeTrespass)
	dest := r.me.Visits[day]
	if r.opportunity > 0 && !dest.alive() && !r.me.room.inGraveyard(dest) {
		dest.DeadSanitized = true
		r.opportunity--
		data.mergeInto(r.me, Detail{
			"type":    ResultVisit,
			"success": true,
			"lw":      dest.LastWill,
		})
		return one(data)
	}
	return nil
}

/* ---------- framing ---------- */

type framing struct {
	visiting
}

func (f *framing) visit(day int, target *Player) []AbilityResult {
	r := f.r
	data := f.baseVisit(day, target)
	r.me.commitCrime(CrimeTrespass)
	framed := r.me.Visits[day]
	extra := Detail{}
	var cleanCrimes []Crime
	for _, c := range AllCrimes {
		if !framed.Crimes[c] {
			cleanCrimes = append(cleanCrimes, c)
		}
	}
	if len(cleanCrimes) > 0 {
		planted := cleanCrimes[r.me.room.rng.Intn(len(cleanCrimes))]
		framed.commitCrime(planted)
		extra["framed_crime"] = string(planted)
	}
	var dests []*Player
	var evilRoles []*Role
	for _, evil := range r.me.room.remaining() {
		if evil.role().belongsTo(CatMafia) || evil.role().belongsTo(CatTriad) ||
			evil.role().belongsTo(CatEvilNeutral) {
			evilRoles = append(evilRoles, evil.role())
			if evil.Visits[day] != nil {
				dests = append(dests, evil.Visits[day])
			}
		}
	}
	if len(dests) > 0 && len(evilRoles) > 0 {
		to := dests[r.me.room.rng.Intn(len(dests))]
		to.addVisitor(day, framed)
		framed.FramedTo = to
		framed.FramedRole = evilRoles[r.me.room.rng.Intn(len(evilRoles))]
		extra["framed_to"] = to.Index
		extra["framed_role"] = string(framed.FramedRole.id)
	}
	data.mergeInto(r.me, extra)
	return one(data)
}

func (f *framing) afterNight() {
	if framed := f.r.me.Visits[f.r.me.room.day]; framed != nil {
		framed.FramedTo = nil
		framed.FramedRole = nil
	}
}

/* ---------- investigating ---------- */

type investigating struct {
	visiting
	probe        func(day int, investigated *Player) any
	ignoreImmune bool
}

func (iv *investigating) visit(day int, target *Player) []AbilityResult {
	return one(iv.inspect(day, target))
}

func (iv *investigating) inspect(day int, target *Player) *AbilityResult {
	data := iv.baseVisit(day, target)
	data.mergeInto(iv.r.me, Detail{"result": iv.probe(day, iv.r.me.Visits[day])})
	return data
}

// followProbe is the trail report: where the mark went and whether they used
// an active ability. Frames rewrite the trail; immunity blanks it.
func (iv *investigating) followProbe(day int, investigated *Player) any {
	iv.r.me.commitCrime(CrimeTrespass)
	if to := investigated.FramedTo; to != nil {
		return Detail{
			"visits": to.Index,
			"act":    investigated.FramedRole.belongsTo(CatActiveOnly),
		}
	}
	visitIndex := func() any {
		if investigated.Visits[day] != nil {
			return investigated.Visits[day].Index
		}
		return nil
	}
	if iv.ignoreImmune {
		return Detail{"visits": visitIndex(), "act": investigated.Act[day]}
	}
	if investigated.role().detectionImmune {
		return Detail{"visits": nil, "act": false}
	}
	return Detail{"visits": visitIndex(), "act": investigated.Act[day]}
}

// watchProbe lists everyone seen at the mark's door tonight.
func (iv *investigating) watchProbe(day int, investigated *Player) any {
	iv.r.me.commitCrime(CrimeTrespass)
	indices := []int{}
	for _, v := range iv.r.me.room.actorsToday {
		if v.Visits[day] != investigated {
			continue
		}
		if !v.role().belongsTo(CatKillingVisiting) && !v.alive() {
			continue
		}
		if !iv.ignoreImmune && v.role().detectionImmune {
			continue
		}
		indices = append(indices, v.Index)
	}
	sort.Ints(indices)
	return indices
}

// identityProbe reads either the exact role name or the crime sheet,
// depending on configuration. Frames and immunity lie accordingly.
func (iv *investigating) identityProbe(day int, investigated *Player) any {
	r := iv.r
	r.me.commitCrime(CrimeTrespass)
	if r.opts.stringVal(OptDetectExact, DetectRole) == DetectRole {
		if investigated.FramedRole != nil {
			return Detail{"role": string(investigated.FramedRole.id)}
		}
		if !iv.ignoreImmune && investigated.role().detectionImmune {
			return Detail{"role": string(RoleCitizen)}
		}
		return Detail{"role": string(investigated.role().id)}
	}
	sheet := make(map[string]bool, len(AllCrimes))
	if !iv.ignoreImmune && investigated.role().detectionImmune {
		for _, c := range AllCrimes {
			sheet[string(c)] = false
		}
	} else {
		for _, c := range AllCrimes {
			sheet[string(c)] = investigated.Crimes[c]
		}
	}
	return Detail{"crimes": sheet}
}

/* ---------- jailing ---------- */

type jailing struct {
	activeOnly
	jailed       *Player
	jailTarget   *Player
	savedDefense Level
}

func (j *jailing) orderJail(target *Player) { j.jailTarget = target }
func (j *jailing) wantToJail() *Player      { return j.jailTarget }
func (j *jailing) jailing() *Player         { return j.jailed }

func (j *jailing) jail(prisoner *Player) AbilityResult {
	r := j.r
	day := r.me.room.day
	r.me.commitCrime(CrimeKidnap)
	j.jailed = prisoner
	prisoner.JailedBy = r.me
	j.savedDefense = prisoner.role().defense
	if prisoner.role().defense < LevelBasic {
		prisoner.role().defense = LevelBasic
	}
	// A night behind bars is a night without an ability.
	prisoner.Visits[day] = nil
	prisoner.Act[day] = false
	prisoner.role().respondToBlock(r.me)
	data := result()
	data.set(r.me, Detail{"role": string(r.id), "jailed_index": prisoner.Index})
	data.set(prisoner, Detail{"type": ResultJailed})
	return *data
}

func (j *jailing) act(day int) []AbilityResult {
	r := j.r
	data := j.baseAct(day)
	r.opportunity--
	r.me.commitCrime(CrimeMurder)
	data.Sound = string(RoleJailor)
	data.set(j.jailed, Detail{"type": ResultKilled, "by": string(r.id)})
	return one(data)
}

func (j *jailing) afterNight() {
	j.jailTarget = nil
	if j.jailed != nil {
		j.jailed.JailedBy = nil
		j.jailed.role().defense = j.savedDefense
		j.jailed = nil
	}
}

/* ---------- surviving ---------- */

type surviving struct {
	activeOnly
}

func (s *surviving) act(day int) []AbilityResult {
	data := s.baseAct(day)
	s.r.opportunity--
	s.r.defense = LevelBasic
	return one(data)
}

func (s *surviving) afterNight() {
	s.r.defense = LevelNone
}

/* ---------- cult identity reveal ---------- */

// cultReveal introduces a cult member and a mason to each other; neither
// side profits, but both learn.
func cultReveal(r *Role, to *Player) *AbilityResult {
	data := result()
	data.set(r.me, Detail{
		"role": string(r.id),
		"type": ResultRevealed,
		"to":   to.Nickname,
	})
	data.set(to, Detail{
		"role":  string(to.role().id),
		"type":  ResultContacted,
		"by":    string(r.id),
		"index": r.me.Index,
	})
	return data
}
