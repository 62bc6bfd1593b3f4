package utils

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	// Counter for fallback sequential IDs
	idCounter uint64
)

// GenerateID generates a unique ID
func GenerateID() string {
	count := atomic.AddUint64(&idCounter, 1)
	timestamp := time.Now().UnixNano()
	return fmt.Sprintf("%x-%x", timestamp, count)
}

// GenerateCandidateID generates an ID for one evaluated candidate design
func GenerateCandidateID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return GenerateID()
	}
	return id.String()
}

// GenerateEvaluationID generates an ID for one scoring pass with a timestamp prefix
func GenerateEvaluationID() string {
	timestamp := time.Now().Format("20060102-150405")
	id, err := uuid.NewRandom()
	if err != nil {
		count := atomic.AddUint64(&idCounter, 1)
		return fmt.Sprintf("eval-%s-%x", timestamp, count)
	}
	return fmt.Sprintf("eval-%s-%s", timestamp, id.String()[:8])
}
