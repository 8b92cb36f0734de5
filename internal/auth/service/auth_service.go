package service

import (
	"context"
	"errors"

	authdomain "github.com/blogsphere/backend/internal/auth/domain"
	"github.com/blogsphere/backend/internal/common/logger"
	userdomain "github.com/blogsphere/backend/internal/user/domain"
	userrepo "github.com/blogsphere/backend/internal/user/repository"
)

type AuthResult struct {
	User userdomain.Summary
	authdomain.Session
}

func (s *SessionManager) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.normalize()

	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := input.validate(); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return AuthResult{}, err
	}

	emailTaken, err := s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_lookup_failed",
		}).Errorf("register failed: email lookup error: %v", err)
		return AuthResult{}, newInternalError("DB_ERROR", "failed to register user", err)
	}
	if emailTaken {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_email_exists",
		}).Warn("register failed: email already exists")
		return AuthResult{}, ErrEmailTaken
	}

	usernameTaken, err := s.users.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_lookup_failed",
		}).Errorf("register failed: username lookup error: %v", err)
		return AuthResult{}, newInternalError("DB_ERROR", "failed to register user", err)
	}
	if usernameTaken {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_username_exists",
		}).Warn("register failed: username already exists")
		return AuthResult{}, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return AuthResult{}, newInternalError("HASH_FAILED", "failed to register user", err)
	}

	user, err := s.users.Create(ctx, userdomain.NewUser{
		Username:     input.Username,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		// Both existence checks can pass for two concurrent registrations; the
		// unique constraints decide the loser.
		switch {
		case errors.Is(err, userrepo.ErrEmailAlreadyExists):
			return AuthResult{}, ErrEmailTaken
		case errors.Is(err, userrepo.ErrUsernameAlreadyExists):
			return AuthResult{}, ErrUsernameTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		return AuthResult{}, newInternalError("DB_ERROR", "failed to register user", err)
	}

	session, err := s.IssueSession(ctx, string(user.ID))
	if err != nil {
		return AuthResult{}, err
	}

	incrementUsersRegistered()
	s.log.WithFields(ctx, logger.Fields{
		"user_id":  string(user.ID),
		"username": user.Username,
		"action":   "register_success",
	}).Info("user registered")

	return AuthResult{User: user.Summary(), Session: session}, nil
}

func (s *SessionManager) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	input.normalize()

	if err := input.validate(); err != nil {
		incrementLoginAttempts("invalid")
		return AuthResult{}, err
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			incrementLoginAttempts("unknown_email")
			s.log.WithFields(ctx, logger.Fields{
				"action": "login_user_not_found",
			}).Warn("login failed: user not found")
			return AuthResult{}, ErrUserNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"action": "login_lookup_failed",
		}).Errorf("login failed: %v", err)
		return AuthResult{}, newInternalError("DB_ERROR", "failed to login", err)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "login_compare_failed",
		}).Errorf("login failed: %v", err)
		return AuthResult{}, newInternalError("HASH_FAILED", "failed to login", err)
	}
	if !ok {
		incrementLoginAttempts("wrong_password")
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "login_invalid_password",
		}).Warn("login failed: invalid password")
		return AuthResult{}, ErrInvalidCredentials
	}

	session, err := s.IssueSession(ctx, string(user.ID))
	if err != nil {
		return AuthResult{}, err
	}

	incrementLoginAttempts("success")
	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(user.ID),
		"action":  "login_success",
	}).Info("login success")

	return AuthResult{User: user.Summary(), Session: session}, nil
}

// Refresh rotates the session and returns the owning user. The user is loaded
// before the new record is written.
func (s *SessionManager) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	var user userdomain.User
	session, err := s.rotate(ctx, refreshToken, func(userID string) error {
		var findErr error
		user, findErr = s.users.FindByID(ctx, userdomain.ID(userID))
		if findErr == nil {
			return nil
		}
		if errors.Is(findErr, userrepo.ErrUserNotFound) {
			incrementRefreshTokensRejected(rejectUserGone)
			return ErrInvalidRefreshToken
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "refresh_user_lookup_failed",
		}).Errorf("refresh failed: %v", findErr)
		return newInternalError("DB_ERROR", "failed to refresh session", findErr)
	})
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{User: user.Summary(), Session: session}, nil
}

// Logout always succeeds from the caller's point of view; a store failure only
// leaves a record behind until it expires.
func (s *SessionManager) Logout(ctx context.Context, refreshToken string) error {
	if err := s.RevokeSession(ctx, refreshToken); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "logout_revoke_failed",
		}).Errorf("logout: failed to revoke session: %v", err)
		return nil
	}

	s.log.WithFields(ctx, logger.Fields{
		"action": "logout_success",
	}).Info("logout success")
	return nil
}
