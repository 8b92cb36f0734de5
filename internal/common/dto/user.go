package dto

import "time"

type User struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse is the body of register, login, refresh and logout.
type AuthResponse struct {
	User *User `json:"user"`
	Auth bool  `json:"auth"`
}
