package game

// Detail is one player's slice of a night-action outcome. Keys are wire
// names; the "type" key carries one of the Result* constants when the
// resolver must react (kill, convert) rather than just notify.
type Detail map[string]any

// Result type values the resolver dispatches on, plus the informational ones
// passed straight through as ABILITY_RESULT payloads.
const (
	ResultKilled     = "KILLED"
	ResultConverted  = "CONVERTED"
	ResultVisit      = "VISIT"
	ResultAct        = "ACT"
	ResultAttacked   = "ATTACKED"
	ResultAlmostDied = "ALMOST_DIED"
	ResultHealed     = "HEALED"
	ResultJailed     = "JAILED"
	ResultThreatened = "THREATENED"
	ResultBlocked    = "BLOCKED"
	ResultBodyguard  = "BODYGUARDED"
	ResultContacted  = "CONTACTED"
	ResultNotified   = "NOTIFIED"
	ResultJoined     = "JOINED"
	ResultRevealed   = "REVEALED"
	ResultSecondTask = "SECOND_TASK"
	ResultEvening    = "EVENING"
)

// suicideSound is the SOUND payload for deaths the town hears but no role
// claims.
const suicideSound = "SUICIDE"

// Affected pairs a player with the detail that reaches them. Order matters:
// the resolver applies entries in sequence, so outcomes are reproducible for
// a given seed.
type Affected struct {
	Who    *Player
	Detail Detail
}

// AbilityResult is what one hook invocation did to the world. Sound, when
// set, is broadcast to the whole town with the affected count; each Affected
// entry is then applied individually.
type AbilityResult struct {
	Individual []Affected
	Sound      string
	Length     int
}

// set records detail for a player, replacing any earlier entry in place so a
// later write wins without reordering.
func (ar *AbilityResult) set(p *Player, d Detail) *AbilityResult {
	for i := range ar.Individual {
		if ar.Individual[i].Who == p {
			ar.Individual[i].Detail = d
			return ar
		}
	}
	ar.Individual = append(ar.Individual, Affected{Who: p, Detail: d})
	return ar
}

// mergeInto folds keys into a player's existing detail, creating the entry
// when absent.
func (ar *AbilityResult) mergeInto(p *Player, d Detail) *AbilityResult {
	for i := range ar.Individual {
		if ar.Individual[i].Who == p {
			for k, v := range d {
				ar.Individual[i].Detail[k] = v
			}
			return ar
		}
	}
	return ar.set(p, d)
}

// detailFor looks up a player's entry.
func (ar *AbilityResult) detailFor(p *Player) (Detail, bool) {
	for i := range ar.Individual {
		if ar.Individual[i].Who == p {
			return ar.Individual[i].Detail, true
		}
	}
	return nil, false
}

// absorb merges another result's individual entries into this one, keeping
// this result's sound.
func (ar *AbilityResult) absorb(other AbilityResult) *AbilityResult {
	for _, a := range other.Individual {
		ar.mergeInto(a.Who, a.Detail)
	}
	return ar
}

// overlay replaces this result's individual entries with the other's
// wholesale. The interceptor's story wins; earlier entries are discarded.
// Sound and length carry over only when the other result sets them.
func (ar *AbilityResult) overlay(other AbilityResult) *AbilityResult {
	ar.Individual = other.Individual
	if other.Sound != "" {
		ar.Sound = other.Sound
	}
	if other.Length != 0 {
		ar.Length = other.Length
	}
	return ar
}

func result() *AbilityResult { return &AbilityResult{} }

// one wraps a single result in the slice every hook returns.
func one(ar *AbilityResult) []AbilityResult {
	if ar == nil {
		return nil
	}
	return []AbilityResult{*ar}
}
