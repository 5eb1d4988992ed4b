package game

// The two slots in the priority list that are not roles: the stay-at-home
// report for roles with no night ability, and the forced deaths queued
// during the day.
const (
	slotInactive RoleID = "INACTIVE"
	slotSuicide  RoleID = "SUICIDE"
)

// nightPriority fixes the order abilities resolve in. Earlier slots see the
// board as later ones will change it: blocks land before kills, kills before
// inspections, inspections before conversions. Roles listed twice resolve
// their follow-up task on the second pass.
var nightPriority = []RoleID{
	RoleSurvivor,
	RoleCitizen,
	RoleWitch, // control rewrites the target's order
	slotInactive,
	RoleEscort,
	RoleConsort,
	RoleLiaison,
	RoleBeguiler,
	RoleDeceiver,
	RoleFramer,
	RoleForger,
	RoleArsonist, // dousing
	RoleDoctor,
	RoleWitchDoctor, // healing
	RoleBodyguard,
	RoleVeteran,
	RoleJailor,
	RoleKidnapper,
	RoleInterrogator,
	RoleVigilante,
	RoleMafioso,
	RoleGodfather,
	RoleEnforcer,
	RoleDragonHead,
	RoleSerialKiller,
	RoleArsonist,    // ignition
	RoleMasonLeader, // purging intruders
	RoleMassMurderer,
	RoleWitch, // spent above, keeps the follow-up slot shape
	slotSuicide,
	RoleJanitor,
	RoleIncenseMaster,
	RoleCoroner,
	RoleDetective,
	RoleLookout,
	RoleSheriff,
	RoleConsigliere,
	RoleAdministrator,
	RoleAgent,
	RoleVanguard,
	RoleSpy,
	RoleInvestigator,
	RoleAuditor,
	RoleMasonLeader, // recruiting
	RoleCultist,
	RoleWitchDoctor, // converting
	RoleGodfather,   // recruiting
	RoleDragonHead,  // recruiting
	RoleAmnesiac,
	RoleBlackmailer,
	RoleSilencer,
}

// triggerNightEvents resolves the whole night in one pass over
// nightPriority. Within a slot every actor of that role fires and the
// results land before the next slot looks at the board.
func (r *Room) triggerNightEvents() {
	r.actorsToday = append([]*Player(nil), r.remaining()...)

	done := make(map[RoleID]bool, len(nightPriority))
	var worked []*Role
	workedAlready := func(role *Role) bool {
		for _, w := range worked {
			if w == role {
				return true
			}
		}
		return false
	}

	for _, slot := range nightPriority {
		if slot == slotSuicide {
			r.resolveSuicides()
			continue
		}

		var pool []*Player
		switch {
		case slot == slotInactive:
			for _, p := range r.remaining() {
				cat := p.role().categories()
				if !cat.Has(CatVisiting) && !cat.Has(CatActiveOnly) {
					pool = append(pool, p)
				}
			}
		case descriptorOf(slot).Categories.Has(CatKilling):
			// Killers resolve from the dusk snapshot, so a kill landing
			// earlier tonight does not cancel one already in motion. The
			// exception is walking onto a Veteran's porch: that death
			// takes the kill order with it.
			for _, p := range r.actorsToday {
				if p.role().id == slot && !walkedIntoAlert(p, r.day) {
					pool = append(pool, p)
				}
			}
		default:
			for _, p := range r.remaining() {
				if p.role().id == slot {
					pool = append(pool, p)
				}
			}
		}

		for _, actor := range pool {
			role := actor.role()
			var batch []AbilityResult
			switch {
			case done[slot]:
				if role.doSecondTask {
					batch = role.secondTask(r.day)
				}
			case actor.Visits[r.day] != nil:
				batch = r.fireVisit(actor)
			case actor.Act[r.day]:
				batch = role.act(r.day)
			default:
				batch = role.whenInactive(r.day)
			}
			if len(batch) == 0 {
				continue
			}
			for i := range batch {
				r.applyAbilityResult(&batch[i])
			}
			if !workedAlready(role) {
				worked = append(worked, role)
			}
		}
		done[slot] = true
	}

	// Spies hear the wire before the night closes out.
	for _, spy := range r.privateChat[TeamSpy] {
		if tap, ok := spy.role().behavior.(wiretapper); ok {
			r.emit(newEvent(EventAbilityResult, Content(tap.wiretapReport(r.day)), spy))
		}
	}

	for _, role := range worked {
		role.afterNight()
	}
	// Wardens holding a prisoner reset even if they never turned the key.
	for _, p := range r.actorsToday {
		if p.role().belongsTo(CatJailing) && p.role().isJailing() != nil {
			p.role().afterNight()
		}
	}
	// An Executioner who loses the goal to the night loses the game too,
	// and chases the lynch as a Jester from here on.
	for _, p := range r.remaining() {
		role := p.role()
		if role.id != RoleExecutioner || len(role.goalTargets) == 0 {
			continue
		}
		for _, dead := range r.deadLastNight {
			if dead == role.goalTargets[0] {
				p.be(RoleJester)
				break
			}
		}
	}
}

// fireVisit resolves one standing visit order. A role out of uses, or one
// whose ability cannot walk at all, still makes the trip and is seen there.
func (r *Room) fireVisit(actor *Player) []AbilityResult {
	role := actor.role()
	if _, ok := role.behavior.(visiter); !ok || role.opportunity <= 0 {
		return one(forcedVisit(actor, r.day, actor.Visits[r.day]))
	}
	return role.visit(r.day, actor.Visits[r.day])
}

// walkedIntoAlert reports whether the killer's own target is a Veteran on
// alert tonight. The Veteran slot already resolved that visit as a death.
func walkedIntoAlert(actor *Player, day int) bool {
	if !actor.role().belongsTo(CatKillingVisiting) {
		return false
	}
	target := actor.Visits[day]
	return target != nil && target.role().id == RoleVeteran && target.Act[day]
}

// applyAbilityResult fans one result out and lands it. Everyone hears the
// sound; only the affected hear their own line inside it; then each detail
// takes effect, deaths and conversions included.
func (r *Room) applyAbilityResult(e *AbilityResult) {
	if e.Sound != "" {
		var length any
		if e.Length != 0 {
			length = e.Length
		}
		heard := make(map[*Session]bool, len(e.Individual))
		for _, a := range e.Individual {
			r.emit(newEvent(EventSound, Content{
				"SOUND":  e.Sound,
				"LENGTH": length,
				"data":   Content(a.Detail),
			}, a.Who))
			if a.Who.user != nil {
				heard[a.Who.user] = true
			}
		}
		var listening []Listener
		for _, m := range r.members {
			if !heard[m] {
				listening = append(listening, m)
			}
		}
		r.emit(newEvent(EventSound, Content{"SOUND": e.Sound, "LENGTH": length}, listening...))
		r.pause(r.timing.ShortPause)
	}

	for _, a := range e.Individual {
		detail := a.Detail
		switch detail["type"] {
		case ResultKilled:
			by, _ := detail["by"].(string)
			a.Who.die(by)
		case ResultConverted:
			into, _ := detail["into"].(string)
			a.Who.be(RoleID(into))
			if detail["notes"] == string(RoleAmnesiac) {
				// The remembered trade comes with however many uses its
				// last owner had left, but never none at all.
				remembered := a.Who.Visits[r.day].role()
				if remembered.opportunity != unlimitedUses {
					uses := remembered.opportunity
					if uses <= 0 {
						uses = 1
					}
					a.Who.role().opportunity = uses
				}
			}
		default:
			r.emit(newEvent(EventAbilityResult, Content(detail), a.Who))
		}
	}
}

// resolveSuicides carries out every death owed tonight: standing wills,
// Jester verdicts, Counsel failures, then deserters. Only the queued kinds
// can be healed away; leaving cannot.
func (r *Room) resolveSuicides() {
	for _, p := range r.actorsToday {
		if p.WillSuicide {
			r.suiciders = append(r.suiciders, suicide{who: p, cause: "will"})
		}
	}
	for _, s := range r.suiciders {
		if s.who.isHealed() {
			rescue := healRescue(s.who, suicideSound)
			for _, a := range rescue.Individual {
				r.emit(newEvent(EventAbilityResult, Content(a.Detail), a.Who))
			}
			continue
		}
		r.emit(newEvent(EventSound, Content{"SOUND": suicideSound}, r.audience()...))
		s.who.die(s.cause)
		r.pause(r.timing.ShortPause)
	}
	for _, left := range r.leavers {
		r.emit(newEvent(EventSound, Content{"SOUND": suicideSound}, r.audience()...))
		left.die("leave")
	}
	r.leavers = nil
	r.suiciders = nil
}
