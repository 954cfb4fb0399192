package agents

import (
	"fmt"

	"stockadvisor/pkg/errors"
)

// Role identifies a specialist or the top-level advisor.
type Role string

const (
	RoleTechnical   Role = "technical"
	RoleNews        Role = "news"
	RoleFundamental Role = "fundamental"
	RolePortfolio   Role = "portfolio"
	RoleAdvisor     Role = "advisor"
)

// Title is the display name used in reports, e.g. "Technical".
func (r Role) Title() string {
	switch r {
	case RoleTechnical:
		return "Technical"
	case RoleNews:
		return "News"
	case RoleFundamental:
		return "Fundamental"
	case RolePortfolio:
		return "Portfolio"
	case RoleAdvisor:
		return "Advisor"
	default:
		return string(r)
	}
}

// Result is the outcome of one agent run. It stays structured until a
// presentation layer calls String.
type Result struct {
	Role      Role
	Text      string
	SessionID string
	Err       error
}

// OK reports whether the run completed.
func (r Result) OK() bool {
	return r.Err == nil
}

// String renders the report, or the failure line for failed runs.
func (r Result) String() string {
	if r.Err == nil {
		return r.Text
	}

	msg := r.Err.Error()
	var runErr *errors.AgentRunError
	if errors.As(r.Err, &runErr) && runErr.Err != nil {
		msg = runErr.Err.Error()
	}

	if r.Role == RoleAdvisor {
		return fmt.Sprintf("Advisor failed: %s", msg)
	}
	return fmt.Sprintf("%s Analysis failed: %s", r.Role.Title(), msg)
}
