package models

import "time"

// User is a registered app installation, identified by the opaque token the
// client generated at first launch. Tokens never expire and users are never
// deleted in normal operation.
type User struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}
