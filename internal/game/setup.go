package game

import (
	"fmt"
	"math"
	"math/rand"
)

// SetupErrorKind separates tampering from honest mistakes. Malformed means
// the payload names vocabulary that does not exist, which a stock client
// never sends; Invalid means a well-formed setup that cannot be played.
type SetupErrorKind int

const (
	SetupMalformed SetupErrorKind = iota
	SetupInvalid
)

func (k SetupErrorKind) String() string {
	if k == SetupMalformed {
		return "malformed"
	}
	return "invalid"
}

// SetupError reports why a submitted setup was rejected.
type SetupError struct {
	Kind   SetupErrorKind
	Reason string
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup %s: %s", e.Kind, e.Reason)
}

func malformed(format string, args ...any) *SetupError {
	return &SetupError{Kind: SetupMalformed, Reason: fmt.Sprintf(format, args...)}
}

func invalidSetup(format string, args ...any) *SetupError {
	return &SetupError{Kind: SetupInvalid, Reason: fmt.Sprintf(format, args...)}
}

// SetupSubmission is the raw client payload: formation names, per-role
// option picks and per-slot exclusion flags, all unvalidated.
type SetupSubmission struct {
	Title       string                     `json:"title"`
	Formation   []string                   `json:"formation"`
	Constraints map[string]map[string]any  `json:"constraints"`
	Exclusion   map[string]map[string]bool `json:"exclusion"`
}

// Setup is a validated, immutable game configuration. Constraints holds a
// fully-normalized option table for every role in the catalog, not just the
// ones in the formation; conversions mid-game draw from it too.
type Setup struct {
	Title       string
	Inventor    string
	Formation   []string
	Constraints map[RoleID]Constraints
	Exclusion   map[string][]string

	tokens []formationToken
	pools  [][]RoleID
}

// NewSetup validates a submission and builds the Setup, or reports exactly
// what was wrong with it.
func NewSetup(inventor string, sub SetupSubmission) (*Setup, error) {
	s := &Setup{
		Title:     trimTitle(sub.Title),
		Inventor:  inventor,
		Formation: append([]string(nil), sub.Formation...),
	}

	competitors := make(map[Team]bool)
	for _, name := range sub.Formation {
		token, ok := tokenByName(name)
		if !ok {
			return nil, malformed("%s is not a slot or a dealable role", name)
		}
		s.tokens = append(s.tokens, token)
		if team := token.team(); team != TeamNone && teamAgainst(team) != 0 {
			competitors[team] = true
		}
	}

	constraints, err := normalizeConstraints(sub.Constraints)
	if err != nil {
		return nil, err
	}
	s.Constraints = constraints

	excluded := make(map[string]map[RoleID]bool)
	s.Exclusion = make(map[string][]string)
	for from, flags := range sub.Exclusion {
		slot := slotByName(from)
		if slot == nil {
			return nil, malformed("%s is not a random slot; nothing can be excluded from it", from)
		}
		set := make(map[RoleID]bool)
		for name, on := range flags {
			if !on {
				continue
			}
			ids, ok := exclusionToken(name, slot.Wild)
			if !ok {
				return nil, malformed("%s cannot be excluded from %s", name, from)
			}
			for _, id := range ids {
				set[id] = true
			}
			s.Exclusion[from] = append(s.Exclusion[from], name)
		}
		excluded[from] = set
	}

	if len(s.tokens) < 5 || len(s.tokens) > 15 {
		return nil, invalidSetup("a setup seats 5 to 15 players, not %d", len(s.tokens))
	}

	opposed := false
	for fighter := range competitors {
		for other := range competitors {
			if teamAgainst(fighter).Meets(teamCategory(other)) {
				opposed = true
			}
		}
	}
	if !opposed {
		return nil, invalidSetup("no opposing factions")
	}

	seen := make(map[RoleID]int)
	for _, token := range s.tokens {
		if token.role != nil && token.role.Unique {
			seen[token.role.ID]++
			if seen[token.role.ID] > 1 {
				return nil, invalidSetup("%s must be unique", token.role.ID)
			}
		}
	}

	townPossible := false
	for team := range competitors {
		if teamCategory(team).Meets(CatTown) {
			townPossible = true
		}
	}
	executionerHunts := constraints[RoleExecutioner].boolVal(OptTargetIsTown, true)

	s.pools = make([][]RoleID, len(s.tokens))
	for i, token := range s.tokens {
		var pool []RoleID
		for _, id := range token.candidates() {
			if !excluded[token.name][id] {
				pool = append(pool, id)
			}
		}
		if len(pool) == 0 {
			return nil, invalidSetup("every role is excluded from slot %d (%s)", i+1, token.name)
		}
		for _, id := range pool {
			if id == RoleSpy && !competitors[TeamMafia] && !competitors[TeamTriad] {
				return nil, invalidSetup("Spy can appear in slot %d (%s) but neither Mafia nor Triad is certain", i+1, token.name)
			}
			if id == RoleExecutioner && executionerHunts && !townPossible {
				return nil, invalidSetup("Executioner can appear in slot %d (%s) but no Town faction can exist to hunt", i+1, token.name)
			}
		}
		s.pools[i] = pool
	}
	return s, nil
}

// normalizeConstraints builds the full option table: every catalog role gets
// its defaults, overlaid with the validated submission.
func normalizeConstraints(sub map[string]map[string]any) (map[RoleID]Constraints, error) {
	out := make(map[RoleID]Constraints, len(catalog))
	for id, d := range catalog {
		opts := make(Constraints, len(d.Options))
		for key, spec := range d.Options {
			opts[key] = spec.Default
		}
		out[id] = opts
	}
	for name, picks := range sub {
		d := catalog[RoleID(name)]
		if d == nil {
			return nil, malformed("%s is not a role and takes no options", name)
		}
		for key, value := range picks {
			spec, ok := d.Options[OptionKey(key)]
			if !ok {
				return nil, malformed("%s has no option named %s", name, key)
			}
			normalized, ok := matchOptionValue(spec, value)
			if !ok {
				return nil, malformed("%v is not among the choices for %s of %s", value, key, name)
			}
			out[d.ID][OptionKey(key)] = normalized
		}
	}
	return out, nil
}

// matchOptionValue checks a submitted value against the spec's legal set.
// JSON hands numbers over as float64; whole ones compare as ints.
func matchOptionValue(spec OptionSpec, value any) (any, bool) {
	if f, ok := value.(float64); ok && f == math.Trunc(f) {
		value = int(f)
	}
	for _, legal := range spec.Values {
		if legal == value {
			return value, true
		}
	}
	return nil, false
}

// trial deals one concrete role per slot, uniformly from that slot's pool.
func (s *Setup) trial(rng *rand.Rand) []RoleID {
	out := make([]RoleID, len(s.pools))
	for i, pool := range s.pools {
		out[i] = pool[rng.Intn(len(pool))]
	}
	return out
}

// describe is the wire form of the setup, as shown in lobbies and stored
// with match records.
func (s *Setup) describe() Content {
	constraints := make(map[string]map[string]any, len(s.Constraints))
	for id, opts := range s.Constraints {
		if len(opts) == 0 {
			continue
		}
		row := make(map[string]any, len(opts))
		for key, value := range opts {
			row[string(key)] = value
		}
		constraints[string(id)] = row
	}
	exclusion := make(map[string][]string, len(s.Exclusion))
	for from, names := range s.Exclusion {
		exclusion[from] = append([]string(nil), names...)
	}
	return Content{
		"title":       s.Title,
		"inventor":    s.Inventor,
		"formation":   append([]string(nil), s.Formation...),
		"constraints": constraints,
		"exclusion":   exclusion,
	}
}
