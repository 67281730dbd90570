package models

import "time"

// HealthStatus represents the health status of a service.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Health is the liveness/readiness response body.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    time.Time              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// CacheStatusResponse reports the directory cache state.
type CacheStatusResponse struct {
	HasData      bool       `json:"hasData"`
	FetchedAt    *time.Time `json:"fetchedAt,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	IsExpired    bool       `json:"isExpired"`
	StationCount int        `json:"stationCount"`
	DataSource   string     `json:"dataSource,omitempty"`
}

// BreakerStatus reports one circuit breaker's state.
type BreakerStatus struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// SystemStatus is the operational status response body.
type SystemStatus struct {
	Status   HealthStatus        `json:"status"`
	Time     time.Time           `json:"time"`
	Cache    CacheStatusResponse `json:"cache"`
	Breakers []BreakerStatus     `json:"breakers,omitempty"`
}
