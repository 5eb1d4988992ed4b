package game

// Team is the win-condition a role fights for. Solo killers each count as
// their own team so the endgame can tell them apart.
type Team string

const (
	TeamNone           Team = ""
	TeamTown           Team = "Town"
	TeamMafia          Team = "Mafia"
	TeamTriad          Team = "Triad"
	TeamCult           Team = "Cult"
	TeamMason          Team = "Mason"
	TeamSpy            Team = "Spy"
	TeamNeutralKilling Team = "NeutralKilling"
	TeamSerialKiller   Team = "SerialKiller"
	TeamMassMurderer   Team = "MassMurderer"
	TeamArsonist       Team = "Arsonist"
)

// IsNeutralKilling reports whether the team is a solo killer.
func (t Team) IsNeutralKilling() bool {
	return t == TeamSerialKiller || t == TeamMassMurderer || t == TeamArsonist
}

// Category is a bitmask of everything a role is: faction, alignment and the
// ability families it carries. Slot matching and hostility checks are mask
// intersections.
type Category uint64

const (
	// Factions and groups.
	CatTown Category = 1 << iota
	CatMafia
	CatTriad
	CatNeutral
	CatBenignNeutral
	CatEvilNeutral
	CatNeutralKilling
	CatCult
	CatMason
	CatSerialKiller
	CatMassMurderer
	CatArsonist

	// Alignments.
	CatKilling
	CatGovernment
	CatProtective
	CatInvestigative
	CatPower
	CatSupport
	CatDeception
	CatBenign
	CatEvil

	// Ability families.
	CatVisiting
	CatActiveOnly
	CatActiveAndVisiting
	CatKillingVisiting
	CatCriminalKilling
	CatBoss
	CatHealing
	CatBlocking
	CatHiding
	CatThreatening
	CatSanitizing
	CatFraming
	CatInvestigating
	CatFollowing
	CatWatching
	CatIdentityInvestigating
	CatJailing
	CatSurviving
	CatCrying
)

// Has reports whether every bit of sub is present.
func (c Category) Has(sub Category) bool { return c&sub == sub }

// Meets reports whether any bit overlaps.
func (c Category) Meets(other Category) bool { return c&other != 0 }

// teamCategory places a team on the category lattice, for hostility checks.
func teamCategory(t Team) Category {
	switch t {
	case TeamTown:
		return CatTown
	case TeamMafia:
		return CatMafia
	case TeamTriad:
		return CatTriad
	case TeamNeutralKilling:
		return CatNeutralKilling | CatNeutral | CatEvilNeutral
	case TeamCult:
		return CatCult | CatNeutral | CatEvilNeutral
	case TeamMason:
		return CatMason | CatTown | CatGovernment
	case TeamSpy:
		return CatTown | CatPower
	case TeamSerialKiller:
		return CatSerialKiller | CatNeutralKilling | CatNeutral | CatEvilNeutral
	case TeamMassMurderer:
		return CatMassMurderer | CatNeutralKilling | CatNeutral | CatEvilNeutral
	case TeamArsonist:
		return CatArsonist | CatNeutralKilling | CatNeutral | CatEvilNeutral
	}
	return 0
}

// teamAgainst is who a team needs gone before it can win. Empty means the
// team fights nobody and never forces a game on.
func teamAgainst(t Team) Category {
	switch t {
	case TeamTown, TeamMason, TeamSpy:
		return CatMafia | CatTriad | CatEvilNeutral
	case TeamMafia:
		return CatTown | CatTriad | CatNeutralKilling | CatCult
	case TeamTriad:
		return CatTown | CatMafia | CatNeutralKilling | CatCult
	case TeamNeutralKilling:
		return CatTown
	case TeamCult:
		return CatTown | CatMafia | CatTriad | CatNeutralKilling
	case TeamSerialKiller:
		return CatTown | CatMafia | CatTriad | CatCult | CatMassMurderer | CatArsonist
	case TeamMassMurderer:
		return CatTown | CatMafia | CatTriad | CatCult | CatSerialKiller | CatArsonist
	case TeamArsonist:
		return CatTown | CatMafia | CatTriad | CatCult | CatSerialKiller | CatMassMurderer
	}
	return 0
}

// RoleID names a concrete role.
type RoleID string

const (
	RoleSpy           RoleID = "Spy"
	RoleStump         RoleID = "Stump"
	RoleMason         RoleID = "Mason"
	RoleMarshall      RoleID = "Marshall"
	RoleMayor         RoleID = "Mayor"
	RoleJudge         RoleID = "Judge"
	RoleCrier         RoleID = "Crier"
	RoleSheriff       RoleID = "Sheriff"
	RoleCoroner       RoleID = "Coroner"
	RoleDetective     RoleID = "Detective"
	RoleLookout       RoleID = "Lookout"
	RoleAgent         RoleID = "Agent"
	RoleVanguard      RoleID = "Vanguard"
	RoleInvestigator  RoleID = "Investigator"
	RoleConsigliere   RoleID = "Consigliere"
	RoleAdministrator RoleID = "Administrator"
	RoleCounsel       RoleID = "Counsel"
	RoleBeguiler      RoleID = "Beguiler"
	RoleDeceiver      RoleID = "Deceiver"
	RoleEscort        RoleID = "Escort"
	RoleConsort       RoleID = "Consort"
	RoleLiaison       RoleID = "Liaison"
	RoleFramer        RoleID = "Framer"
	RoleForger        RoleID = "Forger"
	RoleBlackmailer   RoleID = "Blackmailer"
	RoleSilencer      RoleID = "Silencer"
	RoleJanitor       RoleID = "Janitor"
	RoleIncenseMaster RoleID = "IncenseMaster"
	RoleBodyguard     RoleID = "Bodyguard"
	RoleJailor        RoleID = "Jailor"
	RoleKidnapper     RoleID = "Kidnapper"
	RoleInterrogator  RoleID = "Interrogator"
	RoleMasonLeader   RoleID = "MasonLeader"
	RoleVeteran       RoleID = "Veteran"
	RoleVigilante     RoleID = "Vigilante"
	RoleMafioso       RoleID = "Mafioso"
	RoleEnforcer      RoleID = "Enforcer"
	RoleGodfather     RoleID = "Godfather"
	RoleDragonHead    RoleID = "DragonHead"
	RoleCitizen       RoleID = "Citizen"
	RoleSurvivor      RoleID = "Survivor"
	RoleCultist       RoleID = "Cultist"
	RoleDoctor        RoleID = "Doctor"
	RoleWitchDoctor   RoleID = "WitchDoctor"
	RoleJester        RoleID = "Jester"
	RoleWitch         RoleID = "Witch"
	RoleAuditor       RoleID = "Auditor"
	RoleAmnesiac      RoleID = "Amnesiac"
	RoleScumbag       RoleID = "Scumbag"
	RoleExecutioner   RoleID = "Executioner"
	RoleSerialKiller  RoleID = "SerialKiller"
	RoleMassMurderer  RoleID = "MassMurderer"
	RoleArsonist      RoleID = "Arsonist"
)

// unlimitedUses marks an ability with no charge limit. Charges still tick
// down from here; nobody survives long enough to drain them.
const unlimitedUses = 999

// Role is one player's current identity: the descriptor-derived constants,
// the mutable combat state, and the behavior that implements its hooks.
type Role struct {
	id   RoleID
	me   *Player
	opts Constraints

	offense         Level
	defense         Level
	blockable       bool
	healable        bool
	detectionImmune bool
	convertable     bool
	canTargetSelf   bool
	canAtSameTime   bool // ActiveAndVisiting may visit and act the same night
	opportunity     int
	votes           int
	restTill        int
	doSecondTask    bool

	goalTargets     []*Player
	recruitableInto map[RoleID]RoleID

	behavior behavior
}

// behavior is a role's hook bundle. Concrete behaviors additionally satisfy
// whichever capability interfaces below they need; the engine type-asserts.
type behavior interface {
	bind(r *Role)
}

// Capability interfaces. A Role exposes a hook iff its behavior implements
// the matching interface.
type (
	visiter interface {
		visit(day int, target *Player) []AbilityResult
	}
	actor interface {
		act(day int) []AbilityResult
	}
	secondTasker interface {
		secondTask(day int) []AbilityResult
	}
	inactiveActor interface {
		whenInactive(day int) []AbilityResult
	}
	afterNighter interface {
		afterNight()
	}
	blockResponder interface {
		respondToBlock(blocker *Player)
	}
	goalSetter interface {
		setGoalTarget()
	}
	dayActivator interface {
		canActivate() bool
		activate() *Event
	}
	healer interface {
		healAgainst(attacker string) AbilityResult
	}
	guard interface {
		guardFrom(attacker *Player) AbilityResult
	}
	warden interface {
		jail(prisoner *Player) AbilityResult
		jailing() *Player
		wantToJail() *Player
		orderJail(target *Player)
	}
	recruiter interface {
		orderRecruit(target *Player)
	}
	secondTargeter interface {
		orderSecondTarget(target *Player)
	}
)

// ID returns the role's name.
func (r *Role) ID() RoleID { return r.id }

// Team returns the side the role wins with.
func (r *Role) Team() Team { return descriptorOf(r.id).Team }

// belongsTo reports whether the role carries every bit of the category.
func (r *Role) belongsTo(c Category) bool {
	return descriptorOf(r.id).Categories.Has(c)
}

// categories exposes the full mask.
func (r *Role) categories() Category { return descriptorOf(r.id).Categories }

// Hook dispatch. Missing capabilities resolve to no-ops so the resolver can
// call uniformly across the lineup.

func (r *Role) visit(day int, target *Player) []AbilityResult {
	if v, ok := r.behavior.(visiter); ok {
		return v.visit(day, target)
	}
	return nil
}

func (r *Role) act(day int) []AbilityResult {
	if a, ok := r.behavior.(actor); ok {
		return a.act(day)
	}
	return nil
}

func (r *Role) secondTask(day int) []AbilityResult {
	if s, ok := r.behavior.(secondTasker); ok {
		return s.secondTask(day)
	}
	return nil
}

func (r *Role) whenInactive(day int) []AbilityResult {
	if i, ok := r.behavior.(inactiveActor); ok {
		return i.whenInactive(day)
	}
	return nil
}

func (r *Role) afterNight() {
	r.doSecondTask = false
	if a, ok := r.behavior.(afterNighter); ok {
		a.afterNight()
	}
}

func (r *Role) respondToBlock(blocker *Player) {
	if b, ok := r.behavior.(blockResponder); ok {
		b.respondToBlock(blocker)
	}
}

func (r *Role) setGoalTarget() {
	r.goalTargets = nil
	if g, ok := r.behavior.(goalSetter); ok {
		g.setGoalTarget()
	}
}

func (r *Role) canActivate() bool {
	d, ok := r.behavior.(dayActivator)
	return ok && d.canActivate()
}

func (r *Role) activate() *Event {
	if d, ok := r.behavior.(dayActivator); ok {
		return d.activate()
	}
	return nil
}

func (r *Role) healAgainst(attacker string) (AbilityResult, bool) {
	if h, ok := r.behavior.(healer); ok {
		return h.healAgainst(attacker), true
	}
	return AbilityResult{}, false
}

func (r *Role) guardFrom(attacker *Player) (AbilityResult, bool) {
	if g, ok := r.behavior.(guard); ok {
		return g.guardFrom(attacker), true
	}
	return AbilityResult{}, false
}

func (r *Role) asWarden() (warden, bool) {
	w, ok := r.behavior.(warden)
	return w, ok
}

func (r *Role) isJailing() *Player {
	if w, ok := r.behavior.(warden); ok {
		return w.jailing()
	}
	return nil
}

// canKill compares the role's offense against the victim's current defense.
func (r *Role) canKill(target *Player) bool {
	return r.offense > target.role().defense
}

// canKillRole is canKill against a bare role, for self-inflicted attacks.
func (r *Role) canKillRole(other *Role) bool {
	return r.offense > other.defense
}

// forDead reports whether the role's night target must already be revealed
// dead (Coroner, Amnesiac).
func (r *Role) forDead() bool { return descriptorOf(r.id).ForDead }
