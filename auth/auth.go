// Package auth checks credentials and carries the authenticated user through
// requests as a signed session token.
package auth

import (
	"context"
	"fmt"

	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/repository"
)

var _ interfaces.Authenticator = (*Authenticator)(nil)

// Authenticator looks users up in the user collection.
type Authenticator struct {
	users *repository.Repository[entities.User]
}

func NewAuthenticator(repos *repository.Repositories) *Authenticator {
	return &Authenticator{users: repos.Users}
}

// Authenticate returns the first user whose email and password both equal the
// given ones. Passwords are stored and compared as plain text, nothing is
// trimmed or case folded.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (entities.User, bool, error) {
	users, err := a.users.List(ctx)
	if err != nil {
		return entities.User{}, false, fmt.Errorf("authenticate: %w", err)
	}
	for _, u := range users {
		if u.Email == email && u.Password == password {
			return u, true, nil
		}
	}
	return entities.User{}, false, nil
}
