package session

import (
	"errors"
	"net/http"
)

// ErrUnauthorized is returned by Authorize when the request carries no
// readable identity.
var ErrUnauthorized = errors.New("not authenticated")

// Authorize reads the identity from the request and, if present, invokes
// callback with it, returning the callback's error verbatim. If the identity
// is absent the callback is never invoked and ErrUnauthorized is returned.
func (c *Carrier) Authorize(r *http.Request, callback func(username, seed string) error) error {
	id, ok := c.Read(r)
	if !ok {
		return ErrUnauthorized
	}
	return callback(id.Username, id.Seed)
}
