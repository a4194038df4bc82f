package service

import (
	"strings"

	"github.com/renohub/renohub/internal/domain"
)

// Authorizer is the single admin policy consulted by every privileged
// operation. Admin identities come from configuration, one comma-separated
// list, compared case-insensitively.
type Authorizer struct {
	admins map[string]struct{}
}

// NewAuthorizer creates an authorizer from a comma-separated admin list
func NewAuthorizer(adminEmails string) *Authorizer {
	admins := make(map[string]struct{})
	for _, email := range strings.Split(adminEmails, ",") {
		if normalized := domain.NormalizeAccount(email); normalized != "" {
			admins[normalized] = struct{}{}
		}
	}
	return &Authorizer{admins: admins}
}

// IsAdmin reports whether the account is an operator
func (a *Authorizer) IsAdmin(account string) bool {
	_, ok := a.admins[domain.NormalizeAccount(account)]
	return ok
}
