package social

import (
	"context"
	"fmt"
	"strings"

	auth "github.com/goliatone/go-identity"
	"github.com/goliatone/go-repository-bun"
)

// Linker resolves a provider profile to a local user account.
type Linker interface {
	ResolveUser(ctx context.Context, users auth.Users, profile *Profile) (*LinkingResult, error)
}

// LinkingResult contains the resolved user and metadata.
type LinkingResult struct {
	User      *auth.User
	IsNewUser bool
	Linked    bool
}

// DefaultLinker implements the find-or-create resolution:
//
//  1. an account already bound to (provider, provider user id) wins
//  2. otherwise an existing account with the profile email gets the
//     provider identity attached
//  3. otherwise a new account is created; it stores the provider name
//     as its password sentinel so it can never pass a password check,
//     and falls back to the provider name when the profile carries no
//     email
type DefaultLinker struct {
	OnUserCreated func(ctx context.Context, user *auth.User, profile *Profile) error
}

// ResolveUser implements Linker.
func (s *DefaultLinker) ResolveUser(ctx context.Context, users auth.Users, profile *Profile) (*LinkingResult, error) {
	if profile == nil || profile.ProviderUserID == "" {
		return nil, ErrProfileIncomplete
	}

	user, err := users.GetByProviderID(ctx, profile.Provider, profile.ProviderUserID)
	if err == nil && user != nil {
		return &LinkingResult{User: user, IsNewUser: false}, nil
	}
	if err != nil && !repository.IsRecordNotFound(err) {
		return nil, fmt.Errorf("failed to find linked user: %w", err)
	}

	if profile.Email != "" {
		user, err := users.GetByEmail(ctx, profile.Email)
		if err == nil && user != nil {
			updated, err := users.LinkProvider(ctx, user.ID, profile.Provider, profile.ProviderUserID)
			if err != nil {
				return nil, fmt.Errorf("failed to link provider identity: %w", err)
			}
			return &LinkingResult{User: updated, IsNewUser: false, Linked: true}, nil
		}
		if err != nil && !repository.IsRecordNotFound(err) {
			return nil, fmt.Errorf("failed to find user by email: %w", err)
		}
	}

	newUser := s.createUserFromProfile(profile)

	created, err := users.Register(ctx, newUser)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.OnUserCreated != nil {
		if err := s.OnUserCreated(ctx, created, profile); err != nil {
			return nil, err
		}
	}

	return &LinkingResult{User: created, IsNewUser: true}, nil
}

func (s *DefaultLinker) createUserFromProfile(profile *Profile) *auth.User {
	email := profile.Email
	if email == "" {
		email = profile.Provider
	}

	user := &auth.User{
		Email:        email,
		PasswordHash: profile.Provider,
		Roles:        auth.DefaultRoles(),
	}
	user.SetProviderID(profile.Provider, profile.ProviderUserID)

	if profile.Username != "" {
		user.Username = profile.Username
	} else if profile.Name != "" {
		user.Username = profile.Name
	} else if strings.Contains(profile.Email, "@") {
		user.Username = strings.Split(profile.Email, "@")[0]
	} else {
		user.Username = fmt.Sprintf("%s_%s", profile.Provider, profile.ProviderUserID)
	}

	return user
}
