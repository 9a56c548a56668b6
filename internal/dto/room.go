package dto

// RoomRequest is the payload for creating or updating a room.
type RoomRequest struct {
	Name  string `json:"name" validate:"required,max=64"`
	Floor string `json:"floor" validate:"omitempty,max=64"`
	Seats int    `json:"seats" validate:"required,min=1,max=500"`
	Rows  int    `json:"rows" validate:"required,min=1,max=50"`
	Cols  int    `json:"cols" validate:"required,min=1,max=50"`
	// ConfirmGeometry accepts a grid smaller than the declared seat count.
	ConfirmGeometry bool `json:"confirmGeometry"`
}

// SeedRoomsResponse reports the default rooms inserted.
type SeedRoomsResponse struct {
	Created int  `json:"created"`
	Skipped bool `json:"skipped"`
}
