package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eventhub/backend/internal/auth"
	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/pkg/apperr"
	"github.com/eventhub/backend/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextProfile is the key for the resolved *models.Profile.
	ContextProfile = "profile"
	// ContextSubject is the key for the verified *auth.Subject.
	ContextSubject = "subject"
)

// BearerToken extracts the credential from the Authorization header. A
// missing header yields "", a malformed one an error.
func BearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperr.Unauthenticated("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// Authenticate resolves the bearer credential to a profile and stores it in the context.
func Authenticate(authn *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := BearerToken(c)
		if err != nil {
			response.Abort(c, err)
			return
		}
		profile, err := authn.Resolve(c.Request.Context(), token)
		if err != nil {
			response.Abort(c, err)
			return
		}
		c.Set(ContextProfile, profile)
		c.Set(ContextUserID, profile.ID)
		c.Next()
	}
}

// Credential verifies the bearer credential only; the profile may not exist yet.
func Credential(authn *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := BearerToken(c)
		if err != nil {
			response.Abort(c, err)
			return
		}
		sub, err := authn.Subject(token)
		if err != nil {
			response.Abort(c, err)
			return
		}
		c.Set(ContextSubject, sub)
		c.Set(ContextUserID, sub.ID)
		c.Next()
	}
}

// Profile returns the profile set by Authenticate.
func Profile(c *gin.Context) *models.Profile {
	return c.MustGet(ContextProfile).(*models.Profile)
}

// Subject returns the subject set by Credential.
func Subject(c *gin.Context) *auth.Subject {
	return c.MustGet(ContextSubject).(*auth.Subject)
}
