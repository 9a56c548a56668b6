package dto

// SchoolRequest is the payload for creating or updating a school.
type SchoolRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	County   string `json:"county" validate:"required,max=100"`
	Locality string `json:"locality" validate:"required,max=100"`
}

// SchoolImportResult summarises a bulk import.
type SchoolImportResult struct {
	Total    int `json:"total"`
	Inserted int `json:"inserted"`
	// Duplicates were valid rows already present in the same locality.
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`
}

// SchoolDeleteResponse reports the registrations removed along with the school.
type SchoolDeleteResponse struct {
	SchoolID             string `json:"schoolId"`
	RemovedRegistrations int    `json:"removedRegistrations"`
}
