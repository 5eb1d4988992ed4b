package game

// trackingBehavior pairs the Detective's trail with the Lookout's door
// watch, optionally sitting out the next night when the report is this rich.
type trackingBehavior struct{ investigating }

func (t *trackingBehavior) visit(day int, target *Player) []AbilityResult {
	if t.r.opts.boolVal(OptDelay, false) {
		t.r.restTill = day + 1
	}
	return one(t.inspect(day, target))
}

func (t *trackingBehavior) trailProbe(day int, investigated *Player) any {
	return Detail{
		"FOLLOWING": t.followProbe(day, investigated),
		"WATCHING":  t.watchProbe(day, investigated),
	}
}

func newAgent(me *Player, opts Constraints) *Role {
	r := newRole(RoleAgent, me, opts)
	r.canTargetSelf = true
	b := &trackingBehavior{}
	b.ignoreImmune = true
	b.probe = b.trailProbe
	return attach(r, b)
}

func newVanguard(me *Player, opts Constraints) *Role {
	r := newRole(RoleVanguard, me, opts)
	r.canTargetSelf = true
	b := &trackingBehavior{}
	b.ignoreImmune = true
	b.probe = b.trailProbe
	return attach(r, b)
}

func newBeguiler(me *Player, opts Constraints) *Role {
	return attach(newRole(RoleBeguiler, me, opts), &hiding{})
}

func newDeceiver(me *Player, opts Constraints) *Role {
	return attach(newRole(RoleDeceiver, me, opts), &hiding{})
}

func newBlackmailer(me *Player, opts Constraints) *Role {
	return attach(newRole(RoleBlackmailer, me, opts), &threatening{})
}

func newSilencer(me *Player, opts Constraints) *Role {
	return attach(newRole(RoleSilencer, me, opts), &threatening{})
}

func newConsigliere(me *Player, opts Constraints) *Role {
	r := newRole(RoleConsigliere, me, opts)
	b := &investigating{ignoreImmune: true}
	b.probe = b.identityProbe
	return attach(r, b)
}

func newAdministrator(me *Player, opts Constraints) *Role {
	r := newRole(RoleAdministrator, me, opts)
	b := &investigating{ignoreImmune: true}
	b.probe = b.identityProbe
	return attach(r, b)
}

func newConsort(me *Player, opts Constraints) *Role {
	r := newRole(RoleConsort, me, opts)
	r.blockable = false
	return attach(r, &blocking{})
}

func newLiaison(me *Player, opts Constraints) *Role {
	r := newRole(RoleLiaison, me, opts)
	r.blockable = false
	return attach(r, &blocking{})
}

func newFramer(me *Player, opts Constraints) *Role {
	r := newRole(RoleFramer, me, opts)
	r.detectionImmune = true
	return attach(r, &framing{})
}

func newForger(me *Player, opts Constraints) *Role {
	r := newRole(RoleForger, me, opts)
	r.detectionImmune = true
	return attach(r, &framing{})
}

func newGodfather(me *Player, opts Constraints) *Role {
	r := newRole(RoleGodfather, me, opts)
	r.opportunity = unlimitedUses
	r.offense = LevelBasic
	r.detectionImmune = true
	return attach(r, &boss{})
}

func newDragonHead(me *Player, opts Constraints) *Role {
	r := newRole(RoleDragonHead, me, opts)
	r.opportunity = unlimitedUses
	r.offense = LevelBasic
	r.detectionImmune = true
	return attach(r, &boss{})
}

func newJanitor(me *Player, opts Constraints) *Role {
	return attach(newRole(RoleJanitor, me, opts), &sanitizing{})
}

func newIncenseMaster(me *Player, opts Constraints) *Role {
	return attach(newRole(RoleIncenseMaster, me, opts), &sanitizing{})
}

func newKidnapper(me *Player, opts Constraints) *Role {
	r := newRole(RoleKidnapper, me, opts)
	r.opportunity = 2
	r.offense = LevelAbsolute
	return attach(r, &jailing{})
}

func newInterrogator(me *Player, opts Constraints) *Role {
	r := newRole(RoleInterrogator, me, opts)
	r.opportunity = 2
	r.offense = LevelAbsolute
	return attach(r, &jailing{})
}

func newMafioso(me *Player, opts Constraints) *Role {
	r := newRole(RoleMafioso, me, opts)
	r.opportunity = unlimitedUses
	r.offense = LevelBasic
	return attach(r, &criminalKilling{})
}

func newEnforcer(me *Player, opts Constraints) *Role {
	r := newRole(RoleEnforcer, me, opts)
	r.opportunity = unlimitedUses
	r.offense = LevelBasic
	return attach(r, &criminalKilling{})
}
