package game

type cultistBehavior struct{ visiting }

// visit offers membership. Masons see through the robe, criminals and the
// defended refuse, and a Doctor joins as the cult's healer unless one
// already walked its halls.
func (c *cultistBehavior) visit(day int, offered *Player) []AbilityResult {
	r := c.r
	me := r.me
	data := c.baseVisit(day, offered)
	me.commitCrime(CrimeSoliciting)
	dest := me.Visits[day]
	if dest.role().belongsTo(CatMason) {
		return one(cultReveal(r, dest))
	}
	if dest.role().belongsTo(CatMafia) || dest.role().belongsTo(CatTriad) ||
		dest.role().defense > LevelNone || !dest.role().convertable || !dest.alive() {
		data.mergeInto(me, Detail{"type": ResultVisit, "success": false})
		data.set(dest, Detail{"type": ResultContacted, "by": nil})
		return one(data)
	}
	me.commitCrime(CrimeConspiracy)
	into := RoleCultist
	if dest.role().id == RoleDoctor || dest.role().id == RoleWitch {
		into = RoleWitchDoctor
		for _, other := range me.room.lineup {
			if other.role().id == RoleWitchDoctor {
				into = RoleCultist
				break
			}
		}
	}
	data.set(dest, Detail{
		"type": ResultConverted,
		"by":   string(RoleCultist),
		"into": string(into),
	})
	for _, member := range me.room.privateChat[TeamCult] {
		data.set(member, Detail{
			"type":  ResultJoined,
			"index": dest.Index,
			"into":  string(into),
		})
	}
	return one(data)
}

func newCultist(me *Player, opts Constraints) *Role {
	return attach(newRole(RoleCultist, me, opts), &cultistBehavior{})
}

type witchDoctorBehavior struct{ healing }

func (wd *witchDoctorBehavior) visit(day int, patient *Player) []AbilityResult {
	data := wd.tend(day, patient)
	if dest := wd.r.me.Visits[day]; dest.role().belongsTo(CatMason) {
		return one(cultReveal(wd.r, dest))
	}
	return one(data)
}

// healAgainst saves the patient like any healer, then marks the grateful
// for conversion later tonight. Saving a Mason blows the cover instead.
func (wd *witchDoctorBehavior) healAgainst(attacker string) AbilityResult {
	r := wd.r
	day := r.me.room.day
	patient := r.me.Visits[day]
	data := wd.baseHeal(attacker)
	switch {
	case patient.role().belongsTo(CatMason):
		data = cultReveal(r, patient)
		data.mergeInto(patient, Detail{"healed": true})
	case patient.role().belongsTo(CatMafia) || patient.role().belongsTo(CatTriad) ||
		patient.role().defense > LevelNone || !patient.role().convertable:
		// Saved, not swayed.
	default:
		r.doSecondTask = true
	}
	r.restTill = day + r.opts.intVal(OptDelay, 1)
	return *data
}

func (wd *witchDoctorBehavior) secondTask(day int) []AbilityResult {
	r := wd.r
	patient := r.me.Visits[day]
	if patient == nil || !patient.alive() {
		return nil
	}
	r.me.commitCrime(CrimeConspiracy)
	r.opportunity--
	data := result()
	data.set(patient, Detail{
		"type": ResultConverted,
		"by":   string(RoleWitchDoctor),
		"into": string(RoleCultist),
	})
	for _, member := range r.me.room.privateChat[TeamCult] {
		data.set(member, Detail{
			"type":  ResultJoined,
			"index": patient.Index,
			"into":  string(RoleCultist),
		})
	}
	return one(data)
}

func newWitchDoctor(me *Player, opts Constraints) *Role {
	return attach(newRole(RoleWitchDoctor, me, opts), &witchDoctorBehavior{})
}
