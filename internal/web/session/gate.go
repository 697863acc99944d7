package session

// Requirement is what a route demands of the auth context.
type Requirement int

const (
	Public Requirement = iota
	RequireUser
	RequireAnonymous
)

// Decision is the outcome of Gate. Spinner means the context is still loading and
// nothing should be rendered or redirected yet.
type Decision struct {
	Spinner  bool
	Redirect string
}

func (d Decision) Allowed() bool {
	return !d.Spinner && d.Redirect == ""
}

func Gate(req Requirement, c *Context) Decision {
	if req == Public {
		return Decision{}
	}

	if c.Loading() {
		return Decision{Spinner: true}
	}

	_, authed := c.User()

	switch {
	case req == RequireUser && !authed:
		return Decision{Redirect: "/login"}
	case req == RequireAnonymous && authed:
		return Decision{Redirect: "/"}
	default:
		return Decision{}
	}
}
