// Copyright 2026 © The Paideia Authors
// SPDX-License-Identifier: Apache-2.0

package agents

import (
	"context"
	"time"

	"github.com/jllopis/paideia/pkg/agent"
	"github.com/jllopis/paideia/pkg/core"
	"github.com/jllopis/paideia/pkg/errors"
	"github.com/jllopis/paideia/pkg/store"
)

// Auth manages user accounts, profiles and session tokens.
type Auth struct {
	agent.Base
	svc Services
}

// NewAuth creates the authentication agent.
func NewAuth(svc Services) *Auth {
	a := &Auth{
		Base: agent.NewBase("AuthAgent",
			"Manages user authentication, profiles, and session validation."),
		svc: svc,
	}
	a.Register(core.NewSkill("getProfile",
		"Get user profile information by ID or token",
		a.getProfile, core.WithOutputType("dict")))
	a.Register(core.NewSkill("updateProfile",
		"Update user profile fields",
		a.updateProfile, core.WithOutputType("dict")))
	a.Register(core.NewSkill("validateSession",
		"Validate a session token and return user info",
		a.validateSession, core.WithOutputType("dict")))
	a.Register(core.NewSkill("createSession",
		"Sign in and create a new session",
		a.createSession, core.WithOutputType("dict")))
	a.Register(core.NewSkill("registerUser",
		"Register a new user account",
		a.registerUser, core.WithOutputType("dict")))
	a.Register(core.NewSkill("deleteSession",
		"Sign out by deleting the session",
		a.deleteSession, core.WithOutputType("dict")))
	return a
}

func (a *Auth) store() (*store.Store, error) {
	if a.svc.Store == nil {
		return nil, errors.New(errors.CodeStoreError, "auth store not configured", nil)
	}
	return a.svc.Store, nil
}

func userMap(u *store.User) map[string]any {
	return map[string]any{
		"id":                  u.ID,
		"email":               u.Email,
		"name":                u.Name,
		"software_experience": u.SoftwareExperience,
		"hardware_experience": u.HardwareExperience,
		"learning_goals":      u.LearningGoals,
		"created_at":          u.CreatedAt.Format(time.RFC3339),
	}
}

func (a *Auth) getProfile(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	st, err := a.store()
	if err != nil {
		return nil, err
	}

	var user *store.User
	if token := stringArg(kwargs, "token", ""); token != "" {
		user, _, err = st.ValidateSession(ctx, token)
	} else if userID := intArg(kwargs, "user_id", 0); userID != 0 {
		user, err = st.GetUser(ctx, int64(userID))
	} else {
		return nil, errors.New(errors.CodeInvalidInput, "no user_id or token provided", nil)
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{"user": userMap(user)}, nil
}

func (a *Auth) updateProfile(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	st, err := a.store()
	if err != nil {
		return nil, err
	}
	updates := mapArg(kwargs, "updates")
	if len(updates) == 0 {
		return nil, errors.New(errors.CodeInvalidInput, "no updates provided", nil)
	}

	userID := int64(intArg(kwargs, "user_id", 0))
	if userID == 0 {
		token := stringArg(kwargs, "token", "")
		if token == "" {
			return nil, errors.New(errors.CodeInvalidInput, "no user_id or token provided", nil)
		}
		user, _, err := st.ValidateSession(ctx, token)
		if err != nil {
			return nil, err
		}
		userID = user.ID
	}

	user, err := st.UpdateProfile(ctx, userID, updates)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"user":    userMap(user),
		"user_id": userID,
	}, nil
}

func (a *Auth) validateSession(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	st, err := a.store()
	if err != nil {
		return nil, err
	}
	token, err := requireString(kwargs, "token")
	if err != nil {
		return nil, err
	}

	user, session, err := st.ValidateSession(ctx, token)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"valid":               true,
		"user_id":             user.ID,
		"email":               user.Email,
		"name":                user.Name,
		"software_experience": user.SoftwareExperience,
		"hardware_experience": user.HardwareExperience,
		"learning_goals":      user.LearningGoals,
		"expires_at":          session.ExpiresAt.Format(time.RFC3339),
	}, nil
}

func (a *Auth) createSession(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	st, err := a.store()
	if err != nil {
		return nil, err
	}
	email, err := requireString(kwargs, "email")
	if err != nil {
		return nil, err
	}
	password, err := requireString(kwargs, "password")
	if err != nil {
		return nil, err
	}

	user, err := st.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	session, err := st.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"token":      session.Token,
		"expires_at": session.ExpiresAt.Format(time.RFC3339),
		"user":       userMap(user),
	}, nil
}

func (a *Auth) registerUser(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	st, err := a.store()
	if err != nil {
		return nil, err
	}
	email, err := requireString(kwargs, "email")
	if err != nil {
		return nil, err
	}
	password, err := requireString(kwargs, "password")
	if err != nil {
		return nil, err
	}

	user, err := st.RegisterUser(ctx, email, password, store.Profile{
		Name:               stringArg(kwargs, "name", ""),
		SoftwareExperience: stringArg(kwargs, "software_experience", "beginner"),
		HardwareExperience: stringArg(kwargs, "hardware_experience", "beginner"),
		LearningGoals:      stringArg(kwargs, "learning_goals", ""),
	})
	if err != nil {
		return nil, err
	}
	// Registration signs the user in directly.
	session, err := st.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"token":      session.Token,
		"expires_at": session.ExpiresAt.Format(time.RFC3339),
		"user":       userMap(user),
	}, nil
}

func (a *Auth) deleteSession(ctx context.Context, ictx *core.Context, kwargs map[string]any) (any, error) {
	st, err := a.store()
	if err != nil {
		return nil, err
	}
	token, err := requireString(kwargs, "token")
	if err != nil {
		return nil, err
	}

	deleted, err := st.DeleteSession(ctx, token)
	if err != nil {
		return nil, err
	}
	message := "Session not found"
	if deleted {
		message = "Signed out successfully"
	}
	return map[string]any{
		"signed_out": deleted,
		"message":    message,
	}, nil
}
