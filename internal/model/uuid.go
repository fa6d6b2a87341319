package model

import "github.com/google/uuid"

// generateID creates a new observer ID.
func generateID() string {
	return uuid.New().String()
}
