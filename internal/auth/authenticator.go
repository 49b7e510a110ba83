package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
)

// TokenVerifier resolves a bearer credential to its subject.
type TokenVerifier interface {
	Verify(token string) (*Subject, error)
}

// ProfileGetter loads profiles by id.
type ProfileGetter interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// Authenticator turns a bearer credential into a Profile.
type Authenticator struct {
	verifier TokenVerifier
	profiles ProfileGetter
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(verifier TokenVerifier, profiles ProfileGetter) *Authenticator {
	return &Authenticator{verifier: verifier, profiles: profiles}
}

// Subject verifies the credential without loading a profile.
func (a *Authenticator) Subject(credential string) (*Subject, error) {
	if credential == "" {
		return nil, apperr.Unauthenticated("missing credential")
	}
	sub, err := a.verifier.Verify(credential)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, "invalid or expired token", err)
	}
	return sub, nil
}

// Resolve verifies the credential and loads the matching profile.
func (a *Authenticator) Resolve(ctx context.Context, credential string) (*models.Profile, error) {
	sub, err := a.Subject(credential)
	if err != nil {
		return nil, err
	}
	p, err := a.profiles.GetProfile(ctx, sub.ID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.ProfileMissing("profile not found")
		}
		return nil, err
	}
	return p, nil
}
