package crypto

import "github.com/google/uuid"

type IDGenerator interface {
	NewID() (string, error)
}

// UUIDGenerator mints version 7 UUIDs so blog and comment ids sort by creation time.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
