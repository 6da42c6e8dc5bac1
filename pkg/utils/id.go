package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateRunID generates a run ID with a timestamp prefix
func GenerateRunID() string {
	timestamp := time.Now().UTC().Format("20060102-150405")
	return fmt.Sprintf("run-%s-%s", timestamp, strings.SplitN(uuid.NewString(), "-", 2)[0])
}

// GenerateInstanceID generates a module instance ID
func GenerateInstanceID(app, module string, seq int) string {
	return fmt.Sprintf("%s-%s-%d", app, module, seq)
}

// ValidateRunID rejects caller-supplied run IDs that cannot be used as a
// single URL path segment
func ValidateRunID(id string) error {
	if id == "" {
		return fmt.Errorf("run id cannot be empty")
	}
	if strings.ContainsAny(id, "/?#: ") {
		return fmt.Errorf("run id %q cannot contain '/', '?', '#', ':' or spaces", id)
	}
	return nil
}
