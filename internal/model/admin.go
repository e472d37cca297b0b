package model

// Admin represents an administrator account. Accounts are provisioned
// out-of-band (cmd/seedadmin); login is the only mutation after that.
type Admin struct {
	ID           int     `json:"id"`
	Username     string  `json:"username"`
	PasswordHash string  `json:"-"` // Do not expose password hash in JSON responses
	SessionToken *string `json:"-"` // current live token, nil until first login
}
