package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupAcceptsClassicFiveSeater(t *testing.T) {
	// Setup: a concrete five-seat formation with one tweaked option.
	sub := SetupSubmission{
		Title:     "Witch Trials at Salem Village",
		Formation: []string{"Citizen", "Doctor", "Sheriff", "Mafioso", "Escort"},
		Constraints: map[string]map[string]any{
			"Veteran": {"OPPORTUNITY": float64(4)},
		},
	}

	// Act
	s, err := NewSetup("alice", sub)

	// Assert: playable, title capped, options normalized over the defaults.
	require.NoError(t, err)
	assert.Equal(t, "Witch Trials at", s.Title)
	assert.Equal(t, "alice", s.Inventor)
	assert.Equal(t, 4, s.Constraints[RoleVeteran].intVal(OptOpportunity, 0))
	assert.Equal(t, 3, s.Constraints[RoleMarshall].intVal(OptQuotaPerLynch, 0))
	require.Len(t, s.pools, 5)
	assert.Equal(t, []RoleID{RoleCitizen}, s.pools[0])
	assert.Equal(t, []RoleID{RoleMafioso}, s.pools[3])
}

func TestRandomSlotsDealFromTheirPools(t *testing.T) {
	// Setup: every seat is a random slot.
	sub := SetupSubmission{
		Title:     "Roulette",
		Formation: []string{"Any", "TownAny", "MafiaKilling", "TownInvestigative", "NeutralBenign"},
	}
	s, err := NewSetup("alice", sub)
	require.NoError(t, err)

	masks := []Category{
		0,
		CatTown,
		CatMafia | CatKilling,
		CatTown | CatInvestigative,
		CatNeutral | CatBenignNeutral,
	}

	// Act: deal a pile of hands from one seed.
	rng := rand.New(rand.NewSource(11))
	for hand := 0; hand < 25; hand++ {
		formation := s.trial(rng)

		// Assert: every dealt role carries its slot's alignment in full.
		require.Len(t, formation, 5)
		for i, id := range formation {
			d := descriptorOf(id)
			require.NotNil(t, d, "slot %d dealt the unknown role %q", i+1, id)
			assert.True(t, d.Categories.Has(masks[i]), "slot %d dealt %s outside its pool", i+1, id)
		}
	}

	// Assert: the deal is a pure function of the seed.
	first := rand.New(rand.NewSource(37))
	second := rand.New(rand.NewSource(37))
	for hand := 0; hand < 5; hand++ {
		assert.Equal(t, s.trial(first), s.trial(second))
	}
}

func TestWildcardExclusionsShrinkThePool(t *testing.T) {
	// Setup: a wildcard seat that may not deal any killer or any mafioso.
	sub := SetupSubmission{
		Title:     "Pacifist Roulette",
		Formation: []string{"Any", "Citizen", "Sheriff", "Mafioso", "Doctor"},
		Exclusion: map[string]map[string]bool{
			"Any": {"Killing": true, "Mafia": true, "Witch": true},
		},
	}

	// Act
	s, err := NewSetup("alice", sub)

	// Assert: the surviving pool carries no trace of the excluded groups.
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Killing", "Mafia", "Witch"}, s.Exclusion["Any"])
	require.NotEmpty(t, s.pools[0])
	for _, id := range s.pools[0] {
		d := descriptorOf(id)
		assert.False(t, d.Categories.Meets(CatKilling|CatMafia), "%s survived the exclusion", id)
		assert.NotEqual(t, RoleWitch, id)
	}
}

func TestSetupRejections(t *testing.T) {
	tests := []struct {
		name   string
		sub    SetupSubmission
		kind   SetupErrorKind
		reason string
	}{
		{
			name:   "unknown formation name",
			sub:    SetupSubmission{Formation: []string{"Citizen", "Doctor", "Sheriff", "Mafioso", "Wizard"}},
			kind:   SetupMalformed,
			reason: "not a slot or a dealable role",
		},
		{
			name:   "disabled roles are not dealable",
			sub:    SetupSubmission{Formation: []string{"Citizen", "Doctor", "Sheriff", "Mafioso", "Framer"}},
			kind:   SetupMalformed,
			reason: "not a slot or a dealable role",
		},
		{
			name: "options hung on a slot",
			sub: SetupSubmission{
				Formation:   []string{"Citizen", "Doctor", "Sheriff", "Mafioso", "Escort"},
				Constraints: map[string]map[string]any{"TownAny": {"OPPORTUNITY": float64(3)}},
			},
			kind:   SetupMalformed,
			reason: "not a role and takes no options",
		},
		{
			name: "unknown option key",
			sub: SetupSubmission{
				Formation:   []string{"Citizen", "Doctor", "Sheriff", "Mafioso", "Escort"},
				Constraints: map[string]map[string]any{"Sheriff": {"BULLETS": float64(2)}},
			},
			kind:   SetupMalformed,
			reason: "no option named",
		},
		{
			name: "option value outside the choices",
			sub: SetupSubmission{
				Formation:   []string{"Citizen", "Doctor", "Sheriff", "Mafioso", "Escort"},
				Constraints: map[string]map[string]any{"Veteran": {"OPPORTUNITY": float64(7)}},
			},
			kind:   SetupMalformed,
			reason: "not among the choices",
		},
		{
			name: "exclusion from a concrete role",
			sub: SetupSubmission{
				Formation: []string{"Citizen", "Doctor", "Sheriff", "Mafioso", "Escort"},
				Exclusion: map[string]map[string]bool{"Sheriff": {"Citizen": true}},
			},
			kind:   SetupMalformed,
			reason: "not a random slot",
		},
		{
			name: "alignment exclusion outside the wildcard",
			sub: SetupSubmission{
				Formation: []string{"TownAny", "Doctor", "Sheriff", "Mafioso", "Escort"},
				Exclusion: map[string]map[string]bool{"TownAny": {"Killing": true}},
			},
			kind:   SetupMalformed,
			reason: "cannot be excluded",
		},
		{
			name:   "too few seats",
			sub:    SetupSubmission{Formation: []string{"Citizen", "Doctor", "Sheriff", "Mafioso"}},
			kind:   SetupInvalid,
			reason: "seats 5 to 15",
		},
		{
			name: "too many seats",
			sub: SetupSubmission{Formation: []string{
				"Citizen", "Citizen", "Citizen", "Citizen", "Citizen", "Citizen",
				"Citizen", "Citizen", "Citizen", "Citizen", "Citizen", "Citizen",
				"Citizen", "Citizen", "Citizen", "Mafioso",
			}},
			kind:   SetupInvalid,
			reason: "seats 5 to 15",
		},
		{
			name:   "no opposing factions",
			sub:    SetupSubmission{Formation: []string{"Citizen", "Doctor", "Sheriff", "Escort", "Veteran"}},
			kind:   SetupInvalid,
			reason: "no opposing factions",
		},
		{
			name:   "unique role seated twice",
			sub:    SetupSubmission{Formation: []string{"Marshall", "Marshall", "Sheriff", "Mafioso", "Escort"}},
			kind:   SetupInvalid,
			reason: "must be unique",
		},
		{
			name: "slot bled dry by exclusions",
			sub: SetupSubmission{
				Formation: []string{"TownProtective", "Citizen", "Sheriff", "Mafioso", "Escort"},
				Exclusion: map[string]map[string]bool{
					"TownProtective": {"Bodyguard": true, "Doctor": true, "Escort": true},
				},
			},
			kind:   SetupInvalid,
			reason: "every role is excluded",
		},
		{
			name:   "spy with no crime family to listen to",
			sub:    SetupSubmission{Formation: []string{"Spy", "Citizen", "Sheriff", "Doctor", "SerialKiller"}},
			kind:   SetupInvalid,
			reason: "neither Mafia nor Triad is certain",
		},
		{
			name:   "executioner with no town to hunt",
			sub:    SetupSubmission{Formation: []string{"Executioner", "Mafioso", "Mafioso", "Cultist", "SerialKiller"}},
			kind:   SetupInvalid,
			reason: "no Town faction can exist to hunt",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			_, err := NewSetup("alice", tc.sub)

			// Assert: rejected, and for the advertised reason.
			var serr *SetupError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tc.kind, serr.Kind, "got %v", err)
			assert.Contains(t, serr.Reason, tc.reason)
		})
	}
}

func TestExecutionerHuntingNobodyIsFineOffContract(t *testing.T) {
	// Setup: same godless formation, but the Executioner hunts anyone.
	sub := SetupSubmission{
		Title:     "Godless",
		Formation: []string{"Executioner", "Mafioso", "Mafioso", "Cultist", "SerialKiller"},
		Constraints: map[string]map[string]any{
			"Executioner": {"TARGET_IS_TOWN": false},
		},
	}

	// Act
	_, err := NewSetup("alice", sub)

	// Assert
	require.NoError(t, err)
}

func TestSetupDescribeRoundsTheWireShape(t *testing.T) {
	// Setup
	sub := SetupSubmission{
		Title:     "Classic",
		Formation: []string{"Citizen", "Doctor", "Sheriff", "Mafioso", "TownAny"},
		Exclusion: map[string]map[string]bool{"TownAny": {"Veteran": true}},
	}
	s, err := NewSetup("alice", sub)
	require.NoError(t, err)

	// Act
	info := s.describe()

	// Assert: the lobby sees what was submitted, normalized.
	assert.Equal(t, "Classic", info["title"])
	assert.Equal(t, "alice", info["inventor"])
	assert.Equal(t, []string{"Citizen", "Doctor", "Sheriff", "Mafioso", "TownAny"}, info["formation"])
	exclusion, ok := info["exclusion"].(map[string][]string)
	require.True(t, ok)
	assert.Equal(t, []string{"Veteran"}, exclusion["TownAny"])
	constraints, ok := info["constraints"].(map[string]map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, constraints["Veteran"]["OPPORTUNITY"])
}

func TestCatalogDealsOnlySoundRoles(t *testing.T) {
	// Every dealable role must be constructible and classified, and every
	// option must default to one of its own legal values.
	for _, id := range rolePool {
		d := catalog[id]
		require.NotNil(t, d, "%s is dealable but not in the catalog", id)
		assert.Equal(t, id, d.ID)
		assert.NotNil(t, d.New, "%s has no constructor", id)
		assert.NotZero(t, d.Categories, "%s carries no categories", id)
		assert.False(t, d.Disabled, "%s is disabled yet dealable", id)
		assert.False(t, d.NotForFirst, "%s cannot start a game yet is dealable", id)
		for key, spec := range d.Options {
			assert.Contains(t, spec.Values, spec.Default,
				"%s option %s defaults outside its choices", id, key)
		}
	}

	// Random slots must be resolvable and must be able to deal something.
	for _, slot := range slotTable {
		token, ok := tokenByName(slot.Name)
		require.True(t, ok, "slot %s does not resolve", slot.Name)
		assert.NotEmpty(t, token.candidates(), "slot %s deals nothing", slot.Name)
	}

	// The disabled deceptions stay in the catalog but out of the deal.
	assert.Nil(t, dealableRole("Framer"))
	assert.Nil(t, dealableRole("Forger"))
	assert.Nil(t, dealableRole("Stump"))
}
