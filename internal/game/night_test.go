package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVeteranAlertShootsTheProwler(t *testing.T) {
	// Setup: the Veteran goes on alert, the mafioso picks the wrong door.
	tbl := newMatchTable(t, 5)
	tbl.apply(t, SetupSubmission{
		Title:     "the wrong porch",
		Formation: []string{"Veteran", "Citizen", "Sheriff", "Mafioso", "Bodyguard"},
	})
	tbl.sayAt(1, PhaseEvening, "/act")
	tbl.sayAt(4, PhaseEvening, "/visit 1")

	// Act
	tbl.begin()
	tbl.waitPhase(t, PhaseIdle)

	// Assert: the alert acknowledged, then the shot heard by everyone and
	// explained only to the one it hit.
	assert.Equal(t, []Content{{"ROLE": "Veteran", "ACTIVE": true}}, tbl.probes[0].ofType(EventAct))
	assert.Equal(t, []Content{{"type": "ACT"}}, tbl.probes[0].ofType(EventAbilityResult))
	assert.Equal(t, []Content{{"SOUND": "Veteran", "LENGTH": nil}}, tbl.probes[0].ofType(EventSound))
	assert.Equal(t, []Content{{
		"SOUND":  "Veteran",
		"LENGTH": nil,
		"data":   Content{"type": "KILLED", "by": "Veteran"},
	}}, tbl.probes[3].ofType(EventSound))
	assert.Equal(t, []Content{{"cause": "Veteran"}}, tbl.probes[3].ofType(EventDead))

	// Assert: the intruder's own knife never came out.
	assert.Empty(t, tbl.probes[3].ofType(EventAbilityResult))
	assert.False(t, tbl.probes[0].has(EventSound, func(c Content) bool {
		return c["SOUND"] == "Mafioso"
	}))

	// Assert: one body in the morning, unwrapped stage by stage, and the
	// match closes out without a discussion.
	assert.Equal(t, []Content{{"word": "one"}}, tbl.probes[0].ofType(EventNumberOfDead))
	reveals := tbl.probes[0].ofType(EventIdentityReveal)
	require.Len(t, reveals, 4)
	assert.Equal(t, Content{"index": 4}, reveals[0])
	assert.Equal(t, Content{
		"index": 4, "reason": []string{"Veteran"}, "role": "Mafioso", "lw": "",
	}, reveals[3])
	assert.Equal(t, []string{
		"INITIATING", "NICKNAME_SELECTION", "EVENING", "NIGHT", "MORNING",
		"FINISHING", "IDLE",
	}, tbl.probes[0].phaseTrail())
	assert.Equal(t, []Content{
		{"end statement": true},
		{"main_winner": "Town", "win_alone": false},
		{"index": 1, "role": "Veteran"},
		{"index": 2, "role": "Citizen"},
		{"index": 3, "role": "Sheriff"},
		{"index": 5, "role": "Bodyguard"},
	}, tbl.probes[0].ofType(EventFinish))
}

func TestBodyguardTradesHisLifeAtTheDoor(t *testing.T) {
	// Setup: the family hits the citizen the Bodyguard is standing over.
	tbl := newMatchTable(t, 5)
	tbl.apply(t, SetupSubmission{
		Title:     "held the door",
		Formation: []string{"Mafioso", "Citizen", "Bodyguard", "Sheriff", "Doctor"},
	})
	tbl.sayAt(1, PhaseEvening, "/visit 2")
	tbl.sayAt(3, PhaseEvening, "/visit 2")

	// Act
	tbl.begin()
	tbl.waitPhase(t, PhaseIdle)

	// Assert: the firefight keeps the Bodyguard's sound, never the family's.
	assert.False(t, tbl.probes[1].has(EventSound, func(c Content) bool {
		return c["SOUND"] == "Mafioso"
	}))
	assert.Equal(t, []Content{{
		"SOUND":  "Bodyguard",
		"LENGTH": nil,
		"data": Content{
			"role": "Bodyguard", "type": "KILLED", "by": "DUTY", "from": "Mafioso",
		},
	}}, tbl.probes[2].ofType(EventSound))
	assert.Equal(t, []Content{{
		"SOUND":  "Bodyguard",
		"LENGTH": nil,
		"data":   Content{"role": "Mafioso", "type": "KILLED", "by": "Bodyguard"},
	}}, tbl.probes[0].ofType(EventSound))
	assert.Equal(t, []Content{{"SOUND": "Bodyguard", "LENGTH": nil}}, tbl.probes[3].ofType(EventSound))

	// Assert: the charge slept through it and hears so twice, once inside
	// the sound and once plainly.
	assert.Equal(t, []Content{{
		"SOUND":  "Bodyguard",
		"LENGTH": nil,
		"data":   Content{"type": "BODYGUARDED", "from": "Mafioso"},
	}}, tbl.probes[1].ofType(EventSound))
	assert.Equal(t, []Content{{"type": "BODYGUARDED", "from": "Mafioso"}},
		tbl.probes[1].ofType(EventAbilityResult))
	assert.Empty(t, tbl.probes[1].ofType(EventDead))

	// Assert: both fighters fall, the guard first.
	assert.Equal(t, []Content{{"role": "Bodyguard"}}, tbl.probes[2].ofType(EventAbilityResult))
	assert.Equal(t, []Content{{"cause": "DUTY"}}, tbl.probes[2].ofType(EventDead))
	assert.Equal(t, []Content{{"cause": "Bodyguard"}}, tbl.probes[0].ofType(EventDead))
	assert.Equal(t, []Content{{"word": "some"}}, tbl.probes[0].ofType(EventNumberOfDead))
	reveals := tbl.probes[0].ofType(EventIdentityReveal)
	require.Len(t, reveals, 8)
	assert.Equal(t, Content{
		"index": 3, "reason": []string{"DUTY"}, "role": "Bodyguard", "lw": "",
	}, reveals[3])
	assert.Equal(t, Content{
		"index": 1, "reason": []string{"Bodyguard"}, "role": "Mafioso", "lw": "",
	}, reveals[7])

	// Assert: the town wins and its dead guard wins with it.
	assert.Equal(t, []Content{
		{"end statement": true},
		{"main_winner": "Town", "win_alone": false},
		{"index": 2, "role": "Citizen"},
		{"index": 3, "role": "Bodyguard"},
		{"index": 4, "role": "Sheriff"},
		{"index": 5, "role": "Doctor"},
	}, tbl.probes[0].ofType(EventFinish))
}

func TestWitchWalksTheVigilanteIntoHisOwnGun(t *testing.T) {
	// Setup: the Witch sends the resting Vigilante to his own door.
	tbl := newMatchTable(t, 5)
	tbl.apply(t, SetupSubmission{
		Title:     "a borrowed gun",
		Formation: []string{"Witch", "Vigilante", "Citizen", "Sheriff", "Mafioso"},
	})
	tbl.sayAt(1, PhaseEvening, "/visit 2 2")

	// Act
	tbl.begin()
	tbl.waitPhase(t, PhaseDiscussion)

	// Assert: the order named both marks and stayed with the Witch.
	assert.Equal(t, []Content{{
		"FROM": 1, "ROLE": "Witch", "TARGET": 2, "SECOND_TARGET": 2,
	}}, tbl.probes[0].ofType(EventVisit))
	assert.Equal(t, []Content{{"role": "Witch", "type": "VISIT", "destination": 2}},
		tbl.probes[0].ofType(EventAbilityResult))

	// Assert: the town hears a Beguiler; the victim learns who really held
	// the strings and dies exactly once, with no suicide on top.
	assert.Equal(t, []Content{{
		"SOUND":  "Beguiler",
		"LENGTH": nil,
		"data": Content{
			"role": "Vigilante", "type": "KILLED", "by": "Witch", "by_public": "Witch",
		},
	}}, tbl.probes[1].ofType(EventSound))
	assert.Equal(t, []Content{{"SOUND": "Beguiler", "LENGTH": nil}}, tbl.probes[2].ofType(EventSound))
	assert.Equal(t, []Content{{"cause": "Witch"}}, tbl.probes[1].ofType(EventDead))
	assert.False(t, tbl.probes[2].has(EventSound, func(c Content) bool {
		return c["SOUND"] == "SUICIDE"
	}))

	// Assert: the morning unwraps a Vigilante dead by a Witch.
	assert.Equal(t, []Content{{"word": "one"}}, tbl.probes[0].ofType(EventNumberOfDead))
	reveals := tbl.probes[0].ofType(EventIdentityReveal)
	require.Len(t, reveals, 4)
	assert.Equal(t, Content{
		"index": 2, "reason": []string{"Witch"}, "role": "Vigilante", "lw": "",
	}, reveals[3])
}

func TestDoctorOutbidsTheKnife(t *testing.T) {
	// Setup: the Doctor and the mafioso pick the same patient.
	tbl := newMatchTable(t, 5)
	tbl.apply(t, SetupSubmission{
		Title:     "a close call",
		Formation: []string{"Citizen", "Doctor", "Sheriff", "Mafioso", "Escort"},
	})
	tbl.sayAt(2, PhaseEvening, "/visit 3")
	tbl.sayAt(4, PhaseEvening, "/visit 3")

	// Act
	tbl.begin()
	tbl.waitPhase(t, PhaseDiscussion)

	// Assert: the rescue rides inside the family's sound, for the healer and
	// the patient; the knife itself gets nothing but the noise.
	assert.Equal(t, []Content{
		{"role": "Doctor"},
		{"role": "Doctor", "success": true},
	}, tbl.probes[1].ofType(EventAbilityResult))
	assert.Equal(t, []Content{{
		"SOUND":  "Mafioso",
		"LENGTH": nil,
		"data":   Content{"role": "Doctor", "success": true},
	}}, tbl.probes[1].ofType(EventSound))
	assert.Equal(t, []Content{{
		"SOUND":  "Mafioso",
		"LENGTH": nil,
		"data":   Content{"type": "HEALED", "against": "Mafioso", "by_public": "Mafioso"},
	}}, tbl.probes[2].ofType(EventSound))
	assert.Equal(t, []Content{{"type": "HEALED", "against": "Mafioso", "by_public": "Mafioso"}},
		tbl.probes[2].ofType(EventAbilityResult))
	assert.Equal(t, []Content{{"SOUND": "Mafioso", "LENGTH": nil}}, tbl.probes[3].ofType(EventSound))

	// Assert: nobody died and the morning says nothing of it.
	for i, pr := range tbl.probes {
		assert.Empty(t, pr.ofType(EventDead), "seat %d", i+1)
	}
	assert.Empty(t, tbl.probes[0].ofType(EventNumberOfDead))
	assert.Empty(t, tbl.probes[0].ofType(EventIdentityReveal))
}

func TestEscortKeepsTheKillerBusy(t *testing.T) {
	// Setup: the Escort distracts the mafioso on the night of his hit.
	tbl := newMatchTable(t, 5)
	tbl.apply(t, SetupSubmission{
		Title:     "busy evening",
		Formation: []string{"Citizen", "Doctor", "Sheriff", "Mafioso", "Escort"},
	})
	tbl.sayAt(5, PhaseEvening, "/visit 4")
	tbl.sayAt(4, PhaseEvening, "/visit 3")

	// Act
	tbl.begin()
	tbl.waitPhase(t, PhaseDiscussion)

	// Assert: the block is acknowledged on both sides and the hit never
	// happens; no sound, no body, no morning toll.
	assert.Equal(t, []Content{{"role": "Escort"}}, tbl.probes[4].ofType(EventAbilityResult))
	assert.Equal(t, []Content{{"type": "BLOCKED", "success": true}},
		tbl.probes[3].ofType(EventAbilityResult))
	assert.Empty(t, tbl.probes[0].ofType(EventSound))
	for i, pr := range tbl.probes {
		assert.Empty(t, pr.ofType(EventDead), "seat %d", i+1)
	}
	assert.Empty(t, tbl.probes[0].ofType(EventNumberOfDead))
	trail := tbl.probes[0].phaseTrail()
	require.GreaterOrEqual(t, len(trail), 6)
	assert.Equal(t, []string{
		"INITIATING", "NICKNAME_SELECTION", "EVENING", "NIGHT", "MORNING", "DISCUSSION",
	}, trail[:6])
}
