package monitor

import "time"

type Status struct {
	StorageDriver string    `json:"storage_driver"`
	Storage       bool      `json:"storage"`
	RedisEnabled  bool      `json:"redis_enabled"`
	Redis         bool      `json:"redis"`
	LastCheck     time.Time `json:"last_check"`
}

// Healthy reports whether the task store is reachable. Redis only backs
// rate limiting, which fails open, so it does not affect health.
func (s Status) Healthy() bool {
	return s.Storage
}
