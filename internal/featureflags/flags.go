// Package featureflags provides feature flag management for runtime
// configuration.
package featureflags

import (
	"encoding/json"
	"time"
)

// Well-known feature flag keys.
const (
	// FlagCachedOnlyDirectory forces the station directory to serve only
	// cached, persisted, or sample data without remote fetches.
	FlagCachedOnlyDirectory = "cached_only_directory"

	// FlagDisableSampleFallback disables the bundled sample dataset so
	// source outages surface as errors.
	FlagDisableSampleFallback = "disable_sample_fallback"

	// FlagDisableScheduledRefresh pauses the background directory refresh.
	FlagDisableScheduledRefresh = "disable_scheduled_refresh"
)

// Flag represents a feature flag with its current value.
type Flag struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// FlagList represents a list of feature flags.
type FlagList struct {
	Items []Flag `json:"items"`
}

// FlagUpdate represents a single flag update request.
type FlagUpdate struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// FlagUpdateRequest represents a request to update feature flags.
type FlagUpdateRequest struct {
	Updates []FlagUpdate `json:"updates"`
	Reason  string       `json:"reason"`
}

// BoolValue returns the flag value as a boolean.
// Returns the default value if the flag is nil or not a boolean.
func (f *Flag) BoolValue(defaultValue bool) bool {
	if f == nil {
		return defaultValue
	}
	switch v := f.Value.(type) {
	case bool:
		return v
	case float64:
		// JSON unmarshals numbers as float64
		return v != 0
	default:
		return defaultValue
	}
}

// StringValue returns the flag value as a string.
// Returns the default value if the flag is nil or not a string.
func (f *Flag) StringValue(defaultValue string) string {
	if f == nil {
		return defaultValue
	}
	if v, ok := f.Value.(string); ok {
		return v
	}
	return defaultValue
}

// IntValue returns the flag value as an integer.
// Returns the default value if the flag is nil or not a number.
func (f *Flag) IntValue(defaultValue int) int {
	if f == nil {
		return defaultValue
	}
	switch v := f.Value.(type) {
	case float64:
		// JSON unmarshals numbers as float64
		return int(v)
	case int:
		return v
	default:
		return defaultValue
	}
}

// JSONValue unmarshals the flag value into the target struct.
func (f *Flag) JSONValue(target interface{}) error {
	if f == nil {
		return nil
	}
	data, err := json.Marshal(f.Value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// DefaultFlags returns the default feature flags for the application.
func DefaultFlags() map[string]*Flag {
	now := time.Now()
	return map[string]*Flag{
		FlagCachedOnlyDirectory: {
			Key:       FlagCachedOnlyDirectory,
			Value:     false,
			UpdatedAt: now,
		},
		FlagDisableSampleFallback: {
			Key:       FlagDisableSampleFallback,
			Value:     false,
			UpdatedAt: now,
		},
		FlagDisableScheduledRefresh: {
			Key:       FlagDisableScheduledRefresh,
			Value:     false,
			UpdatedAt: now,
		},
	}
}
