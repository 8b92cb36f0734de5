package service

import (
	"strings"

	"github.com/blogsphere/backend/internal/common/validation"
)

type RegisterInput struct {
	Username        string `json:"username" validate:"required,min=5,max=30"`
	Name            string `json:"name" validate:"required,max=30"`
	Email           string `json:"email" validate:"required,email,max=320"`
	Password        string `json:"password" validate:"required,min=8,max=25,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,max=25,password"`
}

// Emails are compared case-insensitively, so they are stored lowercased.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (in *RegisterInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
}

func (in RegisterInput) validate() error {
	return validation.Struct(in)
}

func (in *LoginInput) normalize() {
	in.Email = normalizeEmail(in.Email)
}

func (in LoginInput) validate() error {
	return validation.Struct(in)
}
