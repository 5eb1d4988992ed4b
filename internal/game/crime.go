package game

// Crime is an entry on a player's record. Night actions commit crimes as a
// side effect; crime-mode investigators read the whole sheet.
type Crime string

const (
	CrimeTrespass              Crime = "TRESPASS"
	CrimeKidnap                Crime = "KIDNAP"
	CrimeCorruption            Crime = "CORRUPTION"
	CrimeIdentityTheft         Crime = "IDENTITY_THEFT"
	CrimeSoliciting            Crime = "SOLICITING"
	CrimeMurder                Crime = "MURDER"
	CrimeDisturbingThePeace    Crime = "DISTURBING_THE_PEACE"
	CrimeConspiracy            Crime = "CONSPIRICY"
	CrimeDestructionOfProperty Crime = "DISTRUCTION_OF_PROPERTY"
	CrimeArson                 Crime = "ARSON"
)

// AllCrimes lists the sheet in display order.
var AllCrimes = []Crime{
	CrimeTrespass,
	CrimeKidnap,
	CrimeCorruption,
	CrimeIdentityTheft,
	CrimeSoliciting,
	CrimeMurder,
	CrimeDisturbingThePeace,
	CrimeConspiracy,
	CrimeDestructionOfProperty,
	CrimeArson,
}
