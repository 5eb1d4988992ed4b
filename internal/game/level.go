package game

// Level grades offense and defense. An attack lands only when the attacker's
// offense strictly exceeds the victim's defense at that moment.
type Level int

const (
	LevelNone Level = iota
	LevelBasic
	LevelStrong
	LevelAbsolute
)

var levelNames = map[Level]string{
	LevelNone:     "NONE",
	LevelBasic:    "BASIC",
	LevelStrong:   "STRONG",
	LevelAbsolute: "ABSOLUTE",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "NONE"
}

// ParseLevel maps a wire name back to a Level. Unknown names read as NONE.
func ParseLevel(name string) (Level, bool) {
	for l, n := range levelNames {
		if n == name {
			return l, true
		}
	}
	return LevelNone, false
}
