package auth

// Session is the client's current view of the dual-session state: the
// backend cookie session plus the optional identity-broker token. It is a
// snapshot; the durable copies live in the backend cookie and the broker's
// own storage.
type Session struct {
	Authenticated bool
	UserID        string
	DisplayName   string
	BearerToken   string
}

// ProbeStatus classifies one backend session check.
type ProbeStatus int

const (
	// ProbeAuthenticated means the backend confirmed a live session.
	ProbeAuthenticated ProbeStatus = iota
	// ProbeUnauthenticated means the backend affirmatively said there is no
	// session: a 401/403, authenticated=false, or a blank user id.
	ProbeUnauthenticated
	// ProbeFailed means the check could not determine anything: transport
	// failure, an unexpected status, or an undecodable payload. Callers
	// treat it as unauthenticated but the cause stays observable.
	ProbeFailed
)

func (s ProbeStatus) String() string {
	switch s {
	case ProbeAuthenticated:
		return "authenticated"
	case ProbeUnauthenticated:
		return "unauthenticated"
	case ProbeFailed:
		return "probe failed"
	default:
		return "unknown"
	}
}

// Probe is the outcome of one session check. Err is set only for
// ProbeFailed.
type Probe struct {
	Status  ProbeStatus
	Session Session
	Err     error
}
