package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_issued_total",
			Help:      "Total number of sessions issued on register, login or refresh",
		},
	)

	AccessTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_tokens_issued_total",
			Help:      "Total number of access tokens issued",
		},
	)

	RefreshTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_tokens_issued_total",
			Help:      "Total number of refresh tokens issued",
		},
	)

	RefreshTokensUsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_tokens_used_total",
			Help:      "Total number of refresh tokens exchanged for a new session",
		},
	)

	RefreshTokensRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_tokens_rejected_total",
			Help:      "Total number of refresh attempts rejected, by reason",
		},
		[]string{"reason"},
	)

	RefreshTokensRevoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_tokens_revoked_total",
			Help:      "Total number of refresh tokens revoked on logout",
		},
	)

	RefreshTokensCleanupDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_tokens_cleanup_deleted_total",
			Help:      "Total number of expired refresh token records deleted during cleanup",
		},
	)

	JWTValidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jwt_validations_total",
			Help:      "Total number of JWT validations",
		},
	)

	JWTValidationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jwt_validations_failed_total",
			Help:      "Total number of failed JWT validations, by token class and reason",
		},
		[]string{"class", "reason"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts, by result",
		},
		[]string{"result"},
	)

	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_registered_total",
			Help:      "Total number of registered users",
		},
	)
)
