package service

import (
	"context"
	"errors"
	"time"

	authdomain "github.com/blogsphere/backend/internal/auth/domain"
	authrepo "github.com/blogsphere/backend/internal/auth/repository"
	"github.com/blogsphere/backend/internal/auth/token"
	"github.com/blogsphere/backend/internal/common/clock"
	"github.com/blogsphere/backend/internal/common/constants"
	commoncrypto "github.com/blogsphere/backend/internal/common/crypto"
	commonerrors "github.com/blogsphere/backend/internal/common/errors"
	"github.com/blogsphere/backend/internal/common/logger"
	"github.com/blogsphere/backend/internal/common/resilience"
	userrepo "github.com/blogsphere/backend/internal/user/repository"
)

type TokenCodec interface {
	SignAccess(subject string, ttl time.Duration) (string, error)
	SignRefresh(subject string, ttl time.Duration) (string, error)
	Verify(tokenString string, class token.Class) (string, error)
}

type SessionManagerDeps struct {
	Users        userrepo.Repository
	RefreshStore authrepo.RefreshStore
	Hasher       commoncrypto.PasswordHasher
	Codec        TokenCodec
	Clock        clock.Clock
	Log          *logger.Logger
}

type SessionManagerConfig struct {
	AccessTokenTTL          time.Duration
	RefreshTokenTTL         time.Duration
	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration
}

// SessionManager owns the session lifecycle. It keeps no session state of its
// own: a session exists only as the refresh record in the store.
type SessionManager struct {
	users           userrepo.Repository
	refreshStore    authrepo.RefreshStore
	hasher          commoncrypto.PasswordHasher
	codec           TokenCodec
	clock           clock.Clock
	log             *logger.Logger
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	storeBreaker    *resilience.CircuitBreaker
}

func NewSessionManager(deps SessionManagerDeps, config SessionManagerConfig) *SessionManager {
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}
	log := deps.Log
	if log == nil {
		log = logger.NewDiscard()
	}

	if config.AccessTokenTTL <= 0 {
		config.AccessTokenTTL = constants.DefaultAccessTokenTTL
	}
	if config.RefreshTokenTTL <= 0 {
		config.RefreshTokenTTL = constants.DefaultRefreshTokenTTL
	}
	if config.CircuitBreakerThreshold <= 0 {
		config.CircuitBreakerThreshold = constants.DefaultCircuitBreakerThreshold
	}
	if config.CircuitBreakerTimeout <= 0 {
		config.CircuitBreakerTimeout = constants.DefaultCircuitBreakerTimeout
	}
	if config.CircuitBreakerReset <= 0 {
		config.CircuitBreakerReset = constants.DefaultCircuitBreakerReset
	}

	return &SessionManager{
		users:           deps.Users,
		refreshStore:    deps.RefreshStore,
		hasher:          deps.Hasher,
		codec:           deps.Codec,
		clock:           clk,
		log:             log,
		accessTokenTTL:  config.AccessTokenTTL,
		refreshTokenTTL: config.RefreshTokenTTL,
		storeBreaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Threshold:  int32(config.CircuitBreakerThreshold),
			Timeout:    config.CircuitBreakerTimeout,
			ResetAfter: config.CircuitBreakerReset,
			Name:       "refresh_store",
			Ignore:     []error{authrepo.ErrRefreshTokenNotFound},
			Clock:      clk,
			Logger:     log,
		}),
	}
}

// IssueSession mints a fresh token pair for userID and replaces whatever
// refresh record the user had before.
func (s *SessionManager) IssueSession(ctx context.Context, userID string) (authdomain.Session, error) {
	accessToken, err := s.codec.SignAccess(userID, s.accessTokenTTL)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "session_sign_access_failed",
		}).Errorf("issue session failed: %v", err)
		return authdomain.Session{}, newInternalError("TOKEN_SIGN_FAILED", "failed to issue session", err)
	}

	refreshToken, err := s.codec.SignRefresh(userID, s.refreshTokenTTL)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "session_sign_refresh_failed",
		}).Errorf("issue session failed: %v", err)
		return authdomain.Session{}, newInternalError("TOKEN_SIGN_FAILED", "failed to issue session", err)
	}

	now := s.clock.Now()
	record := authdomain.RefreshRecord{
		UserID:    userID,
		TokenHash: authdomain.HashToken(refreshToken),
		ExpiresAt: now.Add(s.refreshTokenTTL),
		UpdatedAt: now,
	}

	err = s.storeBreaker.Call(ctx, func(ctx context.Context) error {
		return s.refreshStore.Upsert(ctx, record)
	})
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "session_store_failed",
		}).Errorf("issue session failed: %v", err)
		return authdomain.Session{}, handleStoreError(err, "failed to persist session")
	}

	incrementSessionsIssued()

	return authdomain.Session{
		UserID:           userID,
		AccessToken:      accessToken,
		AccessExpiresAt:  now.Add(s.accessTokenTTL),
		RefreshToken:     refreshToken,
		RefreshExpiresAt: record.ExpiresAt,
	}, nil
}

// VerifySession returns the user id carried by a valid access token. It does
// not consult the refresh store.
func (s *SessionManager) VerifySession(ctx context.Context, accessToken string) (string, error) {
	userID, err := s.codec.Verify(accessToken, token.ClassAccess)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "access_token_rejected",
		}).Debugf("access token rejected: %v", err)
		return "", commonerrors.ErrUnauthenticated.WithCause(err)
	}
	return userID, nil
}

// RotateSession exchanges a refresh token for a new session. The presented
// token stops working once the new record is written.
//
// Known race: two concurrent rotations of the same token can both pass the
// stored-token match. The last upsert wins and the other caller's new refresh
// token is silently invalid.
func (s *SessionManager) RotateSession(ctx context.Context, refreshToken string) (authdomain.Session, error) {
	return s.rotate(ctx, refreshToken, nil)
}

// rotate runs beforeIssue after the presented token is matched and before the
// stored record is replaced, so a failing hook leaves the old token usable.
func (s *SessionManager) rotate(ctx context.Context, refreshToken string, beforeIssue func(userID string) error) (authdomain.Session, error) {
	userID, err := s.verifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return authdomain.Session{}, err
	}

	if err := s.matchStoredRefreshToken(ctx, userID, refreshToken); err != nil {
		return authdomain.Session{}, err
	}

	if beforeIssue != nil {
		if err := beforeIssue(userID); err != nil {
			return authdomain.Session{}, err
		}
	}

	session, err := s.IssueSession(ctx, userID)
	if err != nil {
		return authdomain.Session{}, err
	}

	incrementRefreshTokensUsed()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  "session_rotated",
	}).Info("session rotated")

	return session, nil
}

// verifyRefreshToken checks signature, class and expiry only.
func (s *SessionManager) verifyRefreshToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		incrementRefreshTokensRejected(rejectSignature)
		return "", ErrInvalidRefreshToken
	}

	userID, err := s.codec.Verify(refreshToken, token.ClassRefresh)
	if err != nil {
		reason := rejectSignature
		if errors.Is(err, token.ErrExpiredToken) {
			reason = rejectExpired
		}
		incrementRefreshTokensRejected(reason)
		s.log.WithFields(ctx, logger.Fields{
			"action": "refresh_token_rejected",
			"reason": reason,
		}).Warnf("refresh token rejected: %v", err)
		return "", ErrInvalidRefreshToken.WithCause(err)
	}

	return userID, nil
}

// matchStoredRefreshToken requires the presented token to be the one currently
// stored for userID.
func (s *SessionManager) matchStoredRefreshToken(ctx context.Context, userID, refreshToken string) error {
	var record authdomain.RefreshRecord
	err := s.storeBreaker.Call(ctx, func(ctx context.Context) error {
		var findErr error
		record, findErr = s.refreshStore.FindByValue(ctx, authdomain.HashToken(refreshToken))
		return findErr
	})
	if err != nil {
		if errors.Is(err, authrepo.ErrRefreshTokenNotFound) {
			incrementRefreshTokensRejected(rejectNotStored)
			s.log.WithFields(ctx, logger.Fields{
				"user_id": userID,
				"action":  "refresh_token_not_stored",
			}).Warn("refresh token not stored")
			return ErrInvalidRefreshToken
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "refresh_token_lookup_failed",
		}).Errorf("refresh token lookup failed: %v", err)
		return handleStoreError(err, "failed to load session")
	}

	if record.UserID != userID {
		incrementRefreshTokensRejected(rejectSubjectMismatch)
		s.log.WithFields(ctx, logger.Fields{
			"user_id":        userID,
			"stored_user_id": record.UserID,
			"action":         "refresh_token_subject_mismatch",
		}).Warn("refresh token subject mismatch")
		return ErrInvalidRefreshToken
	}

	if record.Expired(s.clock.Now()) {
		incrementRefreshTokensRejected(rejectExpired)
		return ErrInvalidRefreshToken
	}

	return nil
}

// RevokeSession deletes the record holding refreshToken. The token is not
// verified first: an expired or forged value simply matches nothing.
func (s *SessionManager) RevokeSession(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	err := s.storeBreaker.Call(ctx, func(ctx context.Context) error {
		return s.refreshStore.DeleteByValue(ctx, authdomain.HashToken(refreshToken))
	})
	if err != nil {
		return handleStoreError(err, "failed to revoke session")
	}

	incrementRefreshTokensRevoked()
	return nil
}
