package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewPublicPatientID returns a fresh shareable patient identifier of the
// form EMG-<unix-millis>-<8 uppercase hex chars>. The timestamp keeps IDs
// roughly sortable and human-checkable; the random suffix removes the
// collision window between two profiles created in the same millisecond.
// The value is public by design and carries no secret material.
func NewPublicPatientID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("EMG-%d-%s", time.Now().UTC().UnixMilli(), suffix)
}
