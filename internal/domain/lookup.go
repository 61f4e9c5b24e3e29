package domain

// Outcome classifies how a name-history lookup ended.
type Outcome int

const (
	// OutcomeReport means both stages succeeded and History is populated.
	OutcomeReport Outcome = iota
	// OutcomeInvalidUsername means the identity service knows no such name.
	OutcomeInvalidUsername
	// OutcomeProviderError means the identity service answered with an
	// unexpected HTTP status, kept in StatusCode.
	OutcomeProviderError
	// OutcomeIdentityFailure means the account id could not be obtained from
	// an otherwise successful exchange: a malformed body or a failed request.
	OutcomeIdentityFailure
	// OutcomeHistoryFailure means anything went wrong fetching or parsing the
	// name history.
	OutcomeHistoryFailure
)

var outcomeNames = map[Outcome]string{
	OutcomeReport:          "report",
	OutcomeInvalidUsername: "invalid_username",
	OutcomeProviderError:   "provider_error",
	OutcomeIdentityFailure: "identity_failure",
	OutcomeHistoryFailure:  "history_failure",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// LookupResult is the value a lookup hands back to whoever asked. Err holds
// the underlying cause for logging only and is never shown to players.
type LookupResult struct {
	Username   string
	Outcome    Outcome
	StatusCode int
	AccountID  AccountID
	History    History
	Err        error
}

// OK reports whether the lookup produced a history.
func (r LookupResult) OK() bool {
	return r.Outcome == OutcomeReport
}
