package id

import "github.com/google/uuid"

// JobID identifies one scheduled job.
func JobID() string { return "job-" + uuid.New().String() }

// RequestID tags a management API request in logs.
func RequestID() string { return "req-" + uuid.New().String()[:8] }

