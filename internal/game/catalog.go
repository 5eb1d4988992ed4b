package game

// RoleDescriptor is the book entry for one role: identity, slot-matching
// mask, deal flags, option table and constructor. The catalog below is the
// single source of truth; everything else looks roles up here.
type RoleDescriptor struct {
	ID               RoleID
	Team             Team
	Categories       Category
	Unique           bool
	Disabled         bool
	NotForFirst      bool
	DefaultToExclude bool
	ForDead          bool
	Options          map[OptionKey]OptionSpec
	New              func(me *Player, opts Constraints) *Role
}

func descriptorOf(id RoleID) *RoleDescriptor { return catalog[id] }

// newRole builds the blank slate every constructor starts from. Option-driven
// fields read the already-normalized constraint table; constructors override
// the rest after.
func newRole(id RoleID, me *Player, opts Constraints) *Role {
	return &Role{
		id:              id,
		me:              me,
		opts:            opts,
		offense:         opts.levelVal(OptOffenseLevel, LevelNone),
		defense:         opts.levelVal(OptDefenseLevel, LevelNone),
		blockable:       true,
		healable:        true,
		detectionImmune: opts.boolVal(OptDetectionImmune, false),
		convertable:     true,
		opportunity:     opts.intVal(OptOpportunity, unlimitedUses),
		votes:           1,
	}
}

// Shared option tables. Families that come in mafia/triad pairs submit the
// same knobs.

func hidingOptions() map[OptionKey]OptionSpec {
	return map[OptionKey]OptionSpec{
		OptOpportunity: intOption(3, 2, 3, 4),
		OptNotified:    boolOption(true),
	}
}

func sanitizingOptions() map[OptionKey]OptionSpec {
	return map[OptionKey]OptionSpec{
		OptOpportunity: intOption(2, 1, 2, 3),
	}
}

func trackingOptions() map[OptionKey]OptionSpec {
	// DELAY here is a toggle: a hit costs the next night too.
	return map[OptionKey]OptionSpec{
		OptDelay: boolOption(false),
	}
}

func secretaryOptions() map[OptionKey]OptionSpec {
	return map[OptionKey]OptionSpec{
		OptDetectExact: stringOption(DetectRole, DetectCrime, DetectRole),
		OptPromoted:    boolOption(true),
	}
}

func jailingOptions() map[OptionKey]OptionSpec { return nil }

var catalog map[RoleID]*RoleDescriptor

func init() {
	catalog = map[RoleID]*RoleDescriptor{
		// Town.
		RoleSpy: {
			ID: RoleSpy, Team: TeamSpy,
			Categories: CatTown | CatPower,
			Options: map[OptionKey]OptionSpec{
				OptWiretapJailed: boolOption(false),
			},
			New: newSpy,
		},
		RoleStump: {
			ID: RoleStump, Team: TeamTown,
			Categories:  CatTown | CatPower,
			NotForFirst: true,
			New:         newStump,
		},
		RoleMason: {
			ID: RoleMason, Team: TeamMason,
			Categories: CatTown | CatGovernment | CatMason,
			New:        newMason,
		},
		RoleMarshall: {
			ID: RoleMarshall, Team: TeamTown,
			Categories: CatTown | CatGovernment,
			Unique:     true,
			Options: map[OptionKey]OptionSpec{
				OptOpportunity:   intOption(2, 1, 2),
				OptQuotaPerLynch: intOption(3, 2, 3, 4),
			},
			New: newMarshall,
		},
		RoleMayor: {
			ID: RoleMayor, Team: TeamTown,
			Categories: CatTown | CatGovernment,
			Unique:     true,
			New:        newMayor,
		},
		RoleCrier: {
			ID: RoleCrier, Team: TeamTown,
			Categories: CatCrying | CatTown | CatGovernment,
			Unique:     true,
			New:        newCrier,
		},
		RoleSheriff: {
			ID: RoleSheriff, Team: TeamTown,
			Categories: CatVisiting | CatInvestigating | CatTown | CatInvestigative,
			New:        newSheriff,
		},
		RoleCoroner: {
			ID: RoleCoroner, Team: TeamTown,
			Categories: CatVisiting | CatInvestigating | CatTown | CatInvestigative,
			ForDead:    true,
			New:        newCoroner,
		},
		RoleDetective: {
			ID: RoleDetective, Team: TeamTown,
			Categories: CatVisiting | CatInvestigating | CatFollowing | CatTown | CatInvestigative,
			New:        newDetective,
		},
		RoleLookout: {
			ID: RoleLookout, Team: TeamTown,
			Categories: CatVisiting | CatInvestigating | CatWatching | CatTown | CatInvestigative,
			New:        newLookout,
		},
		RoleInvestigator: {
			ID: RoleInvestigator, Team: TeamTown,
			Categories: CatVisiting | CatInvestigating | CatIdentityInvestigating | CatTown | CatInvestigative,
			Options: map[OptionKey]OptionSpec{
				OptDetectExact: stringOption(DetectCrime, DetectCrime, DetectRole),
			},
			New: newInvestigator,
		},
		RoleEscort: {
			ID: RoleEscort, Team: TeamTown,
			Categories: CatVisiting | CatBlocking | CatTown | CatProtective,
			Options: map[OptionKey]OptionSpec{
				OptRecruitable: boolOption(false),
			},
			New: newEscort,
		},
		RoleDoctor: {
			ID: RoleDoctor, Team: TeamTown,
			Categories: CatVisiting | CatHealing | CatTown | CatProtective,
			New:        newDoctor,
		},
		RoleBodyguard: {
			ID: RoleBodyguard, Team: TeamTown,
			Categories: CatVisiting | CatTown | CatProtective | CatKilling,
			New:        newBodyguard,
		},
		RoleJailor: {
			ID: RoleJailor, Team: TeamTown,
			Categories: CatActiveOnly | CatJailing | CatKilling | CatTown | CatPower,
			Options:    jailingOptions(),
			New:        newJailor,
		},
		RoleMasonLeader: {
			ID: RoleMasonLeader, Team: TeamMason,
			Categories: CatVisiting | CatKillingVisiting | CatKilling | CatTown | CatGovernment | CatMason,
			Unique:     true,
			New:        newMasonLeader,
		},
		RoleVeteran: {
			ID: RoleVeteran, Team: TeamTown,
			Categories: CatActiveOnly | CatKilling | CatTown | CatPower,
			Options: map[OptionKey]OptionSpec{
				OptOpportunity:  intOption(3, 2, 3, 4, unlimitedUses),
				OptOffenseLevel: levelOption(LevelStrong, LevelBasic, LevelStrong),
			},
			New: newVeteran,
		},
		RoleVigilante: {
			ID: RoleVigilante, Team: TeamTown,
			Categories: CatVisiting | CatKillingVisiting | CatKilling | CatTown,
			Options: map[OptionKey]OptionSpec{
				OptOpportunity:  intOption(3, 2, 3, 4, unlimitedUses),
				OptTargetIsTown: stringOption(FailSuicide, FailSuicide, LoseAllBullets),
			},
			New: newVigilante,
		},
		RoleCitizen: {
			ID: RoleCitizen, Team: TeamTown,
			Categories:       CatActiveOnly | CatSurviving | CatTown | CatGovernment,
			DefaultToExclude: true,
			Options: map[OptionKey]OptionSpec{
				OptRecruitable: boolOption(true),
			},
			New: newCitizen,
		},

		// Mafia.
		RoleAgent: {
			ID: RoleAgent, Team: TeamMafia,
			Categories: CatVisiting | CatInvestigating | CatFollowing | CatWatching | CatMafia | CatSupport,
			Options:    trackingOptions(),
			New:        newAgent,
		},
		RoleBeguiler: {
			ID: RoleBeguiler, Team: TeamMafia,
			Categories: CatVisiting | CatHiding | CatMafia | CatDeception,
			Options:    hidingOptions(),
			New:        newBeguiler,
		},
		RoleBlackmailer: {
			ID: RoleBlackmailer, Team: TeamMafia,
			Categories: CatVisiting | CatThreatening | CatMafia | CatSupport,
			New:        newBlackmailer,
		},
		RoleConsigliere: {
			ID: RoleConsigliere, Team: TeamMafia,
			Categories: CatVisiting | CatInvestigating | CatIdentityInvestigating | CatMafia | CatSupport,
			Options:    secretaryOptions(),
			New:        newConsigliere,
		},
		RoleConsort: {
			ID: RoleConsort, Team: TeamMafia,
			Categories: CatVisiting | CatBlocking | CatMafia | CatSupport,
			New:        newConsort,
		},
		RoleFramer: {
			ID: RoleFramer, Team: TeamMafia,
			Categories: CatVisiting | CatFraming | CatMafia | CatDeception,
			Disabled:   true,
			New:        newFramer,
		},
		RoleGodfather: {
			ID: RoleGodfather, Team: TeamMafia,
			Categories: CatVisiting | CatKillingVisiting | CatCriminalKilling | CatBoss | CatKilling | CatMafia,
			Unique:     true,
			New:        newGodfather,
		},
		RoleJanitor: {
			ID: RoleJanitor, Team: TeamMafia,
			Categories: CatVisiting | CatSanitizing | CatMafia | CatDeception,
			Options:    sanitizingOptions(),
			New:        newJanitor,
		},
		RoleKidnapper: {
			ID: RoleKidnapper, Team: TeamMafia,
			Categories: CatActiveOnly | CatJailing | CatKilling | CatMafia | CatSupport,
			Options:    jailingOptions(),
			New:        newKidnapper,
		},
		RoleMafioso: {
			ID: RoleMafioso, Team: TeamMafia,
			Categories: CatVisiting | CatKillingVisiting | CatCriminalKilling | CatKilling | CatMafia,
			New:        newMafioso,
		},

		// Triad.
		RoleAdministrator: {
			ID: RoleAdministrator, Team: TeamTriad,
			Categories: CatVisiting | CatInvestigating | CatIdentityInvestigating | CatTriad | CatSupport,
			Options:    secretaryOptions(),
			New:        newAdministrator,
		},
		RoleDeceiver: {
			ID: RoleDeceiver, Team: TeamTriad,
			Categories: CatVisiting | CatHiding | CatTriad | CatDeception,
			Options:    hidingOptions(),
			New:        newDeceiver,
		},
		RoleDragonHead: {
			ID: RoleDragonHead, Team: TeamTriad,
			Categories: CatVisiting | CatKillingVisiting | CatCriminalKilling | CatBoss | CatKilling | CatTriad,
			Unique:     true,
			New:        newDragonHead,
		},
		RoleEnforcer: {
			ID: RoleEnforcer, Team: TeamTriad,
			Categories: CatVisiting | CatKillingVisiting | CatCriminalKilling | CatKilling | CatTriad,
			New:        newEnforcer,
		},
		RoleIncenseMaster: {
			ID: RoleIncenseMaster, Team: TeamTriad,
			Categories: CatVisiting | CatSanitizing | CatTriad | CatDeception,
			Options:    sanitizingOptions(),
			New:        newIncenseMaster,
		},
		RoleInterrogator: {
			ID: RoleInterrogator, Team: TeamTriad,
			Categories: CatActiveOnly | CatJailing | CatKilling | CatTriad | CatSupport,
			Options:    jailingOptions(),
			New:        newInterrogator,
		},
		RoleLiaison: {
			ID: RoleLiaison, Team: TeamTriad,
			Categories: CatVisiting | CatBlocking | CatTriad | CatSupport,
			New:        newLiaison,
		},
		RoleSilencer: {
			ID: RoleSilencer, Team: TeamTriad,
			Categories: CatVisiting | CatThreatening | CatTriad | CatSupport,
			New:        newSilencer,
		},
		RoleForger: {
			ID: RoleForger, Team: TeamTriad,
			Categories: CatVisiting | CatFraming | CatTriad | CatDeception,
			Disabled:   true,
			New:        newForger,
		},
		RoleVanguard: {
			ID: RoleVanguard, Team: TeamTriad,
			Categories: CatVisiting | CatInvestigating | CatFollowing | CatWatching | CatTriad | CatSupport,
			Options:    trackingOptions(),
			New:        newVanguard,
		},

		// Neutrals.
		RoleAmnesiac: {
			ID: RoleAmnesiac, Team: TeamNone,
			Categories: CatVisiting | CatNeutral | CatBenignNeutral,
			ForDead:    true,
			Options: map[OptionKey]OptionSpec{
				OptNotified: boolOption(false),
				OptNoTown:   boolOption(true),
			},
			New: newAmnesiac,
		},
		RoleAuditor: {
			ID: RoleAuditor, Team: TeamNone,
			Categories: CatVisiting | CatNeutral | CatEvilNeutral,
			Options: map[OptionKey]OptionSpec{
				OptOpportunity: intOption(3, 2, 3, 4),
			},
			New: newAuditor,
		},
		RoleCounsel: {
			ID: RoleCounsel, Team: TeamNone,
			Categories: CatVisiting | CatInvestigating | CatIdentityInvestigating | CatNeutral | CatBenignNeutral,
			Unique:     true,
			Options: map[OptionKey]OptionSpec{
				OptDefenseLevel: levelOption(LevelBasic, LevelNone, LevelBasic),
				OptIfFail:       stringOption(FailSuicide, FailSuicide, FailBeScumbag),
			},
			New: newCounsel,
		},
		RoleExecutioner: {
			ID: RoleExecutioner, Team: TeamNone,
			Categories: CatNeutral | CatBenignNeutral,
			Options: map[OptionKey]OptionSpec{
				OptTargetIsTown: boolOption(true),
			},
			New: newExecutioner,
		},
		RoleJester: {
			ID: RoleJester, Team: TeamNone,
			Categories: CatNeutral | CatBenignNeutral,
			Options: map[OptionKey]OptionSpec{
				OptVictims: stringOption(VictimsOne, VictimsAll, VictimsOne),
			},
			New: newJester,
		},
		RoleJudge: {
			ID: RoleJudge, Team: TeamNone,
			Categories: CatCrying | CatNeutral | CatEvilNeutral,
			Unique:     true,
			Options: map[OptionKey]OptionSpec{
				OptOpportunity: intOption(2, 1, 2),
			},
			New: newJudge,
		},
		RoleScumbag: {
			ID: RoleScumbag, Team: TeamNone,
			Categories: CatNeutral | CatEvilNeutral,
			New:        newScumbag,
		},
		RoleSurvivor: {
			ID: RoleSurvivor, Team: TeamNone,
			Categories: CatActiveOnly | CatSurviving | CatNeutral | CatBenignNeutral,
			Options: map[OptionKey]OptionSpec{
				OptOpportunity: intOption(4, 1, 2, 3, 4),
			},
			New: newSurvivor,
		},
		RoleWitch: {
			ID: RoleWitch, Team: TeamNone,
			Categories: CatVisiting | CatNeutral | CatEvilNeutral,
			Options: map[OptionKey]OptionSpec{
				OptNotified: boolOption(false),
			},
			New: newWitch,
		},
		RoleSerialKiller: {
			ID: RoleSerialKiller, Team: TeamSerialKiller,
			Categories: CatVisiting | CatKillingVisiting | CatKilling | CatNeutral | CatEvilNeutral | CatNeutralKilling | CatSerialKiller,
			New:        newSerialKiller,
		},
		RoleMassMurderer: {
			ID: RoleMassMurderer, Team: TeamMassMurderer,
			Categories: CatVisiting | CatKilling | CatNeutral | CatEvilNeutral | CatNeutralKilling | CatMassMurderer,
			Options: map[OptionKey]OptionSpec{
				OptDelay:           intOption(1, 1, 2),
				OptDetectionImmune: boolOption(false),
			},
			New: newMassMurderer,
		},
		RoleArsonist: {
			ID: RoleArsonist, Team: TeamArsonist,
			Categories: CatVisiting | CatActiveAndVisiting | CatKilling | CatNeutral | CatEvilNeutral | CatNeutralKilling | CatArsonist,
			Options: map[OptionKey]OptionSpec{
				OptNotified: boolOption(false),
			},
			New: newArsonist,
		},

		// Cult.
		RoleCultist: {
			ID: RoleCultist, Team: TeamCult,
			Categories: CatVisiting | CatCult | CatNeutral | CatEvilNeutral,
			Options: map[OptionKey]OptionSpec{
				OptIgnoreNightImmune: boolOption(false),
				OptDelay:             intOption(1, 0, 1, 2),
			},
			New: newCultist,
		},
		RoleWitchDoctor: {
			ID: RoleWitchDoctor, Team: TeamCult,
			Categories: CatVisiting | CatHealing | CatCult | CatNeutral | CatEvilNeutral,
			Unique:     true,
			Options: map[OptionKey]OptionSpec{
				OptOpportunity:     intOption(3, 1, 2, 3, 4),
				OptDelay:           intOption(1, 0, 1, 2),
				OptDetectionImmune: boolOption(true),
			},
			New: newWitchDoctor,
		},
	}
}

// SlotDescriptor is one random formation token. Team feeds the competitor
// check; Match is the mask a dealt role must fully carry.
type SlotDescriptor struct {
	Name             string
	Team             Team
	Match            Category
	Wild             bool
	DefaultToExclude bool
}

// slotTable lists the random tokens in listing order: the full wildcard
// first, then the mafia, triad, neutral and town groups.
var slotTable = []SlotDescriptor{
	{Name: "Any", Wild: true},

	{Name: "MafiaAny", Team: TeamMafia, Match: CatMafia},
	{Name: "MafiaDeception", Team: TeamMafia, Match: CatMafia | CatDeception},
	{Name: "MafiaKilling", Team: TeamMafia, Match: CatMafia | CatKilling},
	{Name: "MafiaSupport", Team: TeamMafia, Match: CatMafia | CatSupport},

	{Name: "TriadAny", Team: TeamTriad, Match: CatTriad},
	{Name: "TriadDeception", Team: TeamTriad, Match: CatTriad | CatDeception},
	{Name: "TriadKilling", Team: TeamTriad, Match: CatTriad | CatKilling},
	{Name: "TriadSupport", Team: TeamTriad, Match: CatTriad | CatSupport},

	{Name: "Cult", Team: TeamCult, Match: CatCult},
	{Name: "NeutralAny", Match: CatNeutral},
	{Name: "NeutralBenign", Match: CatNeutral | CatBenignNeutral},
	{Name: "NeutralEvil", Match: CatNeutral | CatEvilNeutral},
	{Name: "NeutralKilling", Team: TeamNeutralKilling, Match: CatNeutralKilling, DefaultToExclude: true},

	{Name: "TownAny", Team: TeamTown, Match: CatTown},
	{Name: "TownGovernment", Team: TeamTown, Match: CatTown | CatGovernment},
	{Name: "TownInvestigative", Team: TeamTown, Match: CatTown | CatInvestigative},
	{Name: "TownKilling", Team: TeamTown, Match: CatTown | CatKilling},
	{Name: "TownPower", Team: TeamTown, Match: CatTown | CatPower},
	{Name: "TownProtective", Team: TeamTown, Match: CatTown | CatProtective},
}

func slotByName(name string) *SlotDescriptor {
	for i := range slotTable {
		if slotTable[i].Name == name {
			return &slotTable[i]
		}
	}
	return nil
}

// rolePool lists the dealable roles in listing order: mafia, triad, neutral,
// town, alphabetical within each group. Disabled roles and roles that cannot
// start a game are not dealable.
var rolePool = []RoleID{
	RoleAgent, RoleBeguiler, RoleBlackmailer, RoleConsigliere, RoleConsort,
	RoleGodfather, RoleJanitor, RoleKidnapper, RoleMafioso,

	RoleAdministrator, RoleDeceiver, RoleDragonHead, RoleEnforcer,
	RoleIncenseMaster, RoleInterrogator, RoleLiaison, RoleSilencer,
	RoleVanguard,

	RoleAmnesiac, RoleArsonist, RoleAuditor, RoleCounsel, RoleCultist,
	RoleExecutioner, RoleJester, RoleJudge, RoleMassMurderer, RoleScumbag,
	RoleSerialKiller, RoleSurvivor, RoleWitch, RoleWitchDoctor,

	RoleBodyguard, RoleCitizen, RoleCoroner, RoleCrier, RoleDetective,
	RoleDoctor, RoleEscort, RoleInvestigator, RoleJailor, RoleLookout,
	RoleMarshall, RoleMason, RoleMasonLeader, RoleMayor, RoleSheriff,
	RoleSpy, RoleVeteran, RoleVigilante,
}

func dealableRole(name string) *RoleDescriptor {
	d := catalog[RoleID(name)]
	if d == nil || d.Disabled || d.NotForFirst {
		return nil
	}
	return d
}

// rolesMatching collects the dealable roles carrying every bit of mask, in
// pool order.
func rolesMatching(mask Category) []RoleID {
	var out []RoleID
	for _, id := range rolePool {
		if catalog[id].Categories.Has(mask) {
			out = append(out, id)
		}
	}
	return out
}

// formationToken is one resolved formation entry: either a concrete role or
// a random slot.
type formationToken struct {
	name string
	slot *SlotDescriptor
	role *RoleDescriptor
}

// tokenByName resolves a submitted formation name against the slot table
// and the dealable roles. Unknown names resolve to nothing.
func tokenByName(name string) (formationToken, bool) {
	if s := slotByName(name); s != nil {
		return formationToken{name: name, slot: s}, true
	}
	if d := dealableRole(name); d != nil {
		return formationToken{name: name, role: d}, true
	}
	return formationToken{}, false
}

// team reports whose side the token fights for, if anyone's.
func (t formationToken) team() Team {
	if t.role != nil {
		return t.role.Team
	}
	return t.slot.Team
}

// candidates lists the roles the token can deal, before exclusions. The
// Mason token deals plain masons only; the leader rises from within.
func (t formationToken) candidates() []RoleID {
	if t.role != nil {
		if t.role.ID == RoleMason {
			return []RoleID{RoleMason}
		}
		return []RoleID{t.role.ID}
	}
	if t.slot.Wild {
		return append([]RoleID(nil), rolePool...)
	}
	return rolesMatching(t.slot.Match)
}

// exclusionToken resolves a name on an exclusion list. Beyond the formation
// vocabulary, the wildcard accepts the Killing alignment and the four
// faction groups.
func exclusionToken(name string, wild bool) ([]RoleID, bool) {
	if t, ok := tokenByName(name); ok {
		if t.role != nil {
			return []RoleID{t.role.ID}, true
		}
		if t.slot.Wild {
			return append([]RoleID(nil), rolePool...), true
		}
		return rolesMatching(t.slot.Match), true
	}
	if !wild {
		return nil, false
	}
	switch name {
	case "Killing":
		return rolesMatching(CatKilling), true
	case "Town":
		return rolesMatching(CatTown), true
	case "Mafia":
		return rolesMatching(CatMafia), true
	case "Triad":
		return rolesMatching(CatTriad), true
	case "Neutral":
		return rolesMatching(CatNeutral), true
	}
	return nil, false
}

// RoleInfo is the lobby-facing catalog row for one dealable role.
type RoleInfo struct {
	Name             string                    `json:"name"`
	Team             string                    `json:"team"`
	Unique           bool                      `json:"unique"`
	DefaultToExclude bool                      `json:"default_to_exclude"`
	Options          map[string]RoleOptionInfo `json:"options,omitempty"`
}

// RoleOptionInfo is one submittable option with its legal values.
type RoleOptionInfo struct {
	Values  []any `json:"values"`
	Default any   `json:"default"`
}

// SlotInfo is the lobby-facing row for one random formation token.
type SlotInfo struct {
	Name             string `json:"name"`
	DefaultToExclude bool   `json:"default_to_exclude"`
}

// CatalogInfo lists the whole formation vocabulary for setup builders:
// every random slot and every dealable role, in listing order.
func CatalogInfo() (slots []SlotInfo, roleInfos []RoleInfo) {
	for _, s := range slotTable {
		slots = append(slots, SlotInfo{Name: s.Name, DefaultToExclude: s.DefaultToExclude})
	}
	for _, id := range rolePool {
		d := catalog[id]
		info := RoleInfo{
			Name:             string(d.ID),
			Team:             string(d.Team),
			Unique:           d.Unique,
			DefaultToExclude: d.DefaultToExclude,
		}
		if len(d.Options) > 0 {
			info.Options = make(map[string]RoleOptionInfo, len(d.Options))
			for key, spec := range d.Options {
				info.Options[string(key)] = RoleOptionInfo{Values: spec.Values, Default: spec.Default}
			}
		}
		roleInfos = append(roleInfos, info)
	}
	return slots, roleInfos
}
