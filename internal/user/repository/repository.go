package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/blogsphere/backend/internal/common/db"
	"github.com/blogsphere/backend/internal/user/domain"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrEmailAlreadyExists    = errors.New("email already exists")
)

const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

type Repository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
	Create(ctx context.Context, user domain.NewUser) (domain.User, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "check user email", `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *PgRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "check user username", `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *PgRepository) exists(ctx context.Context, operation, query string, arg string) (bool, error) {
	start := time.Now()
	var found bool
	err := r.pool.QueryRow(ctx, query, arg).Scan(&found)
	if err := db.HandleQueryError(err, ErrUserNotFound, operation, start); err != nil {
		return false, err
	}
	return found, nil
}

func (r *PgRepository) Create(ctx context.Context, user domain.NewUser) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO users (username, name, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		user.Username,
		user.Name,
		user.Email,
		user.PasswordHash,
	)

	created := domain.User{
		Username:     user.Username,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	}
	err := row.Scan(&created.ID, &created.CreatedAt)
	if err != nil && db.IsUniqueViolation(err) {
		db.MeasureQueryDuration("create user", start)
		switch db.ConstraintName(err) {
		case emailConstraint:
			return domain.User{}, ErrEmailAlreadyExists
		case usernameConstraint:
			return domain.User{}, ErrUsernameAlreadyExists
		}
		return domain.User{}, ErrUsernameAlreadyExists
	}
	if err := db.HandleQueryError(err, ErrUserNotFound, "create user", start); err != nil {
		return domain.User{}, err
	}
	return created, nil
}

func (r *PgRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, "find user by email",
		`SELECT id, username, name, email, password_hash, created_at FROM users WHERE email = $1`, email)
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	return r.findOne(ctx, "find user by id",
		`SELECT id, username, name, email, password_hash, created_at FROM users WHERE id = $1`, string(id))
}

func (r *PgRepository) findOne(ctx context.Context, operation, query, arg string) (domain.User, error) {
	start := time.Now()
	var user domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err := db.HandleQueryError(err, ErrUserNotFound, operation, start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}
