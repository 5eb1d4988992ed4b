package game

import (
	"strconv"
	"strings"
)

// Slash commands the speech router understands. Everything else on a slash
// is silently dropped; plain lines are chat.
const (
	cmdSlash      = "/"
	cmdBegin      = "/begin"
	cmdPM         = "/pm"
	cmdCourt      = "/court"
	cmdLynch      = "/lynch"
	cmdMayor      = "/mayor"
	cmdVote       = "/vote"
	cmdGuilty     = "/guilty"
	cmdInnocent   = "/innocent"
	cmdAbstention = "/abstention"
	cmdSkip       = "/skip"
	cmdVisit      = "/visit"
	cmdAct        = "/act"
	cmdRecruit    = "/recruit"
	cmdJail       = "/jail"
	cmdSuicide    = "/suicide"
	cmdNickname   = "/nickname"
)

func isCommand(msg, command string) bool {
	return strings.HasPrefix(msg, command)
}

// commandIndex reads the first numeric argument; zero is never a seat.
func commandIndex(msg string) int {
	fields := strings.Fields(msg)
	if len(fields) < 2 {
		return 0
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return n
}

// commandIndices reads one or two numeric arguments.
func commandIndices(msg string) (first, second int, ok bool) {
	fields := strings.Fields(msg)
	if len(fields) < 2 {
		return 0, 0, false
	}
	first, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, false
	}
	if len(fields) >= 3 {
		if second, err = strconv.Atoi(fields[2]); err != nil {
			second = 0
		}
	}
	return first, second, true
}

// commandArg returns everything after the command word, joined by single
// spaces.
func commandArg(msg string) string {
	fields := strings.Fields(msg)
	if len(fields) < 2 {
		return ""
	}
	return strings.Join(fields[1:], " ")
}
