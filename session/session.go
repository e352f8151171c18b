// Package session carries the guest's browser session identity through the
// cart and order services.
package session

import "github.com/google/uuid"

// Session identifies one guest browser. Carts and orders are keyed by Key.
type Session struct {
	Key string
}

func New() Session {
	return Session{Key: uuid.NewString()}
}

func (s Session) IsZero() bool {
	return s.Key == ""
}
