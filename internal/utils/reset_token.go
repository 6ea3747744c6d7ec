package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/donmarsh/tasker-backend/internal/constants"
)

// GenerateResetToken generates a random password reset token.
func GenerateResetToken() (string, error) {
	bytes := make([]byte, constants.ResetTokenLength/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(bytes), nil
}
