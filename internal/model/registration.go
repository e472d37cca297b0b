package model

import "time"

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

const (
	ActionAccept  = "accept"
	ActionDecline = "decline"
)

// Registration represents a single car-meet entry submitted by a visitor
type Registration struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Mobile      string    `json:"mobile"`
	Car         string    `json:"car"`
	Plate       string    `json:"plate"` // stored as typed by the submitter
	Description string    `json:"description"`
	Instagram   *string   `json:"instagram,omitempty"` // Pointer for optional field
	Photos      []string  `json:"photos"`              // public URLs, possibly empty
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateRegistrationRequest carries the text fields of the registration
// form; photo files arrive separately as multipart file headers.
type CreateRegistrationRequest struct {
	Name        string `form:"name" binding:"required"`
	Email       string `form:"email" binding:"required"`
	Mobile      string `form:"mobile" binding:"required"`
	Car         string `form:"car" binding:"required"`
	Plate       string `form:"plate" binding:"required"`
	Description string `form:"description" binding:"required"`
	Instagram   string `form:"instagram"`
}

// ModerateRequest is the admin accept/decline payload
type ModerateRequest struct {
	ID     int64  `json:"id" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// PlateStatus is the public projection returned by the plate-check
// endpoint. Deliberately minimal: no contact info, photos or description.
type PlateStatus struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	Name      string    `json:"name"`
	Plate     string    `json:"plate"`
	CreatedAt time.Time `json:"created_at"`
}

// Vehicle is the public projection of an accepted registration shown on
// the vehicles page.
type Vehicle struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Car         string    `json:"car"`
	Plate       string    `json:"plate"`
	Description string    `json:"description"`
	Photos      []string  `json:"photos"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// VehiclePage is one page of accepted vehicles
type VehiclePage struct {
	Data    []Vehicle `json:"data"`
	HasMore bool      `json:"hasMore"`
	Total   int64     `json:"total"`
	Page    int       `json:"page"`
	Limit   int       `json:"limit"`
}
