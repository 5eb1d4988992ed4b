package game

// OptionKey names a tunable on a role. Only keys listed in a role's
// descriptor may be submitted in a setup.
type OptionKey string

const (
	OptOpportunity       OptionKey = "OPPORTUNITY"
	OptOffenseLevel      OptionKey = "OFFENSE_LEVEL"
	OptDefenseLevel      OptionKey = "DEFENSE_LEVEL"
	OptDetectionImmune   OptionKey = "DETECTION_IMMUNE"
	OptPromoted          OptionKey = "PROMOTED"
	OptNotified          OptionKey = "NOTIFIED"
	OptDetectExact       OptionKey = "DETECT_EXACT_ROLE"
	OptDelay             OptionKey = "DELAY"
	OptRecruitable       OptionKey = "RECRUITABLE"
	OptIfFail            OptionKey = "IF_FAIL"
	OptTargetIsTown      OptionKey = "TARGET_IS_TOWN"
	OptVictims           OptionKey = "VICTIMS"
	OptQuotaPerLynch     OptionKey = "QUOTA_PER_LYNCH"
	OptWiretapJailed     OptionKey = "WIRETAP_JAILED"
	OptIgnoreNightImmune OptionKey = "IGNORE_NIGHT_IMMUNE"
	OptNoTown            OptionKey = "NO_TOWN"
)

// Values for enum-shaped options.
const (
	DetectCrime    = "CRIME"
	DetectRole     = "ROLE"
	FailSuicide    = "SUICIDE"
	FailBeScumbag  = "BE_SCUMBAG"
	VictimsOne     = "ONE"
	VictimsAll     = "ALL"
	LoseAllBullets = "LOSE_ALL_BULLETS"
)

// OptionSpec is the legal value set of one option plus its default. Values
// are ints, bools or strings after normalization.
type OptionSpec struct {
	Values  []any
	Default any
}

func intOption(def int, values ...int) OptionSpec {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return OptionSpec{Values: vs, Default: def}
}

func boolOption(def bool) OptionSpec {
	return OptionSpec{Values: []any{true, false}, Default: def}
}

func stringOption(def string, values ...string) OptionSpec {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return OptionSpec{Values: vs, Default: def}
}

func levelOption(def Level, values ...Level) OptionSpec {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v.String()
	}
	return OptionSpec{Values: vs, Default: def.String()}
}

// Constraints is a role's effective option table: descriptor defaults
// overlaid with the host's validated submission.
type Constraints map[OptionKey]any

func (c Constraints) intVal(key OptionKey, fallback int) int {
	if v, ok := c[key]; ok {
		if n, ok := v.(int); ok {
			return n
		}
	}
	return fallback
}

func (c Constraints) boolVal(key OptionKey, fallback bool) bool {
	if v, ok := c[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

func (c Constraints) stringVal(key OptionKey, fallback string) string {
	if v, ok := c[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

func (c Constraints) levelVal(key OptionKey, fallback Level) Level {
	if v, ok := c[key]; ok {
		if s, ok := v.(string); ok {
			if l, ok := ParseLevel(s); ok {
				return l
			}
		}
	}
	return fallback
}
