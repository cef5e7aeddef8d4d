package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs for stored rows.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues version 7 UUIDs so ids sort roughly by creation time.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return v.String(), nil
}

// Valid reports whether raw parses as a UUID.
func Valid(raw string) bool {
	return uuid.Validate(raw) == nil
}

// SequenceGenerator returns prefix-1, prefix-2, ... and is meant for tests.
type SequenceGenerator struct {
	Prefix string
	n      int
}

func (g *SequenceGenerator) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("%s-%d", g.Prefix, g.n), nil
}
