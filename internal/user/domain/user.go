package domain

import "time"

type ID string

type User struct {
	ID           ID
	Username     string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NewUser carries the fields supplied at registration; the store assigns ID and CreatedAt.
type NewUser struct {
	Username     string
	Name         string
	Email        string
	PasswordHash string
}

// Summary is the public projection of a user, without credentials.
type Summary struct {
	ID        ID
	Username  string
	Name      string
	Email     string
	CreatedAt time.Time
}

func (u User) Summary() Summary {
	return Summary{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
