package dto

// ConfigurationItem is one runtime setting with its declared type.
type ConfigurationItem struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// UpdateConfigurationRequest sets a single setting. Key may be omitted when it comes from the path.
type UpdateConfigurationRequest struct {
	Key   string `json:"key"`
	Value string `json:"value" validate:"required"`
}

// BulkUpdateConfigurationRequest sets several settings at once.
type BulkUpdateConfigurationRequest struct {
	Items []UpdateConfigurationRequest `json:"items" validate:"required,min=1,dive"`
}

// RegistrationWindowRequest opens or closes public submissions.
type RegistrationWindowRequest struct {
	Open *bool `json:"open" validate:"required"`
	// Message replaces the closed-form notice when set.
	Message string `json:"message" validate:"omitempty,max=500"`
}
