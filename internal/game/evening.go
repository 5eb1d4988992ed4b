package game

// crimeFamilies lists the chairs each syndicate fills at dusk when nobody
// left in the chat can pull a trigger.
var crimeFamilies = []struct {
	team   Team
	intern RoleID
	boss   RoleID
}{
	{TeamMafia, RoleMafioso, RoleGodfather},
	{TeamTriad, RoleEnforcer, RoleDragonHead},
}

// triggerEveningEvents settles what dusk owes before night orders are
// taken: vacant chairs get filled, a Counsel whose client swung turns,
// yesterday's jail orders land, and the solitary roles hear their evening
// briefings.
func (r *Room) triggerEveningEvents() {
	// A lodge without its leader elevates the first Mason standing.
	hasLeader := false
	for _, p := range r.remaining() {
		if p.role().id == RoleMasonLeader {
			hasLeader = true
			break
		}
	}
	if !hasLeader {
		for _, p := range r.remaining() {
			if p.role().belongsTo(CatMason) {
				p.be(RoleMasonLeader)
				break
			}
		}
	}

	// A family with no armed killer promotes: the member groomed for the
	// top chair first, the first one seated otherwise.
	for _, fam := range crimeFamilies {
		chat := r.privateChat[fam.team]
		if len(chat) == 0 {
			continue
		}
		armed := false
		for _, c := range chat {
			if c.role().belongsTo(CatKillingVisiting) && c.role().opportunity > 0 {
				armed = true
				break
			}
		}
		if armed {
			continue
		}
		promoted := false
		for _, c := range chat {
			if c.role().belongsTo(CatIdentityInvestigating) && c.role().opts.boolVal(OptPromoted, false) {
				c.be(fam.boss)
				promoted = true
				break
			}
		}
		if !promoted {
			chat[0].be(fam.intern)
		}
	}

	// A Counsel sworn to switch sides turns Scumbag the evening after the
	// client hangs. The ones sworn to die were queued at the verdict.
	for _, p := range r.remaining() {
		role := p.role()
		if role.id != RoleCounsel {
			continue
		}
		if role.opts.stringVal(OptIfFail, FailSuicide) != FailBeScumbag {
			continue
		}
		if anyAmong(role.goalTargets, r.executed) {
			p.be(RoleScumbag)
		}
	}

	// Nobody gets locked up on an execution day.
	if len(r.executed) == 0 {
		for _, jailor := range r.jailQueue {
			if jailor.JailedBy != nil {
				continue
			}
			w, ok := jailor.role().asWarden()
			if !ok {
				continue
			}
			target := w.wantToJail()
			if target == nil {
				continue
			}
			if target.JailedBy != nil {
				// One cell per prisoner; the later jailor learns it failed.
				r.emit(newEvent(EventAbilityResult, Content{
					"type":    ResultJailed,
					"success": false,
				}, jailor))
				continue
			}
			outcome := w.jail(target)
			for _, a := range outcome.Individual {
				r.emit(newEvent(EventAbilityResult, Content(a.Detail), a.Who))
			}
		}
	}

	var survivors, amnesiacs, arsonists []*Player
	names := make([]string, 0, len(r.remaining()))
	seen := make(map[RoleID]bool)
	oiled := make([]int, 0)
	for _, p := range r.remaining() {
		role := p.role()
		if !seen[role.id] {
			seen[role.id] = true
			names = append(names, string(role.id))
		}
		if p.Oiled {
			oiled = append(oiled, p.Index)
		}
		switch role.id {
		case RoleSurvivor:
			survivors = append(survivors, p)
		case RoleAmnesiac:
			amnesiacs = append(amnesiacs, p)
		case RoleArsonist:
			arsonists = append(arsonists, p)
		}
	}
	pool := make([]int, 0)
	for _, dead := range r.graveyard {
		if !descriptorOf(dead.role().id).Unique {
			pool = append(pool, dead.Index)
		}
	}
	r.emit(newEvent(EventAbilityResult, Content{
		"ROLE":      string(RoleSurvivor),
		"EVENING":   true,
		"REMAINING": names,
	}, listeners(survivors)...))
	r.emit(newEvent(EventAbilityResult, Content{
		"ROLE":    string(RoleAmnesiac),
		"EVENING": true,
		"POOL":    pool,
	}, listeners(amnesiacs)...))
	r.emit(newEvent(EventAbilityResult, Content{
		"ROLE":    string(RoleArsonist),
		"EVENING": true,
		"OILED":   oiled,
	}, listeners(arsonists)...))
}

// anyAmong reports whether the two player sets share a member.
func anyAmong(targets, among []*Player) bool {
	for _, t := range targets {
		for _, o := range among {
			if t == o {
				return true
			}
		}
	}
	return false
}
