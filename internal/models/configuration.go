package models

import "time"

// ConfigurationType defines supported types for configuration values.
type ConfigurationType string

const (
	ConfigurationTypeString  ConfigurationType = "STRING"
	ConfigurationTypeBoolean ConfigurationType = "BOOLEAN"
	ConfigurationTypeInteger ConfigurationType = "INTEGER"
)

// Known configuration keys.
const (
	ConfigKeyRegistrationOpen    = "registration_open"
	ConfigKeyRegistrationMessage = "registration_closed_message"
	ConfigKeyCycleQuota          = "cycle_quota"
	ConfigKeyContestName         = "contest_name"
)

// Configuration represents a persisted configuration entry.
type Configuration struct {
	Key         string            `db:"key" json:"key"`
	Value       string            `db:"value" json:"value"`
	Type        ConfigurationType `db:"type" json:"type"`
	Description *string           `db:"description" json:"description,omitempty"`
	UpdatedBy   *string           `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// RegistrationWindow is the public view of whether submissions are accepted.
type RegistrationWindow struct {
	IsActive    bool   `json:"is_active"`
	Message     string `json:"message"`
	CycleQuota  int    `json:"cycle_quota"`
	ContestName string `json:"contest_name,omitempty"`
}
