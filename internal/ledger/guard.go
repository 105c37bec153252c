package ledger

import "fmt"

// Guard evaluates whether a caller may perform a privileged operation. The
// platform authority is a single configured identity; farm-owner and
// verified-buyer relationships are checked by the owning services against
// loaded records.
type Guard struct {
	authority string
}

// NewGuard creates a guard for the configured platform authority identity.
func NewGuard(authority string) *Guard {
	return &Guard{authority: authority}
}

// IsAuthority reports whether the caller is the platform authority.
func (g *Guard) IsAuthority(caller string) bool {
	return caller != "" && caller == g.authority
}

// RequireAuthority fails with ErrUnauthorized unless the caller is the
// platform authority.
func (g *Guard) RequireAuthority(caller string) error {
	if !g.IsAuthority(caller) {
		return fmt.Errorf("%w: caller %q is not the platform authority", ErrUnauthorized, caller)
	}
	return nil
}
