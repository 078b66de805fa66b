// Package session carries the authenticated identity between requests as a
// cookie pair. The server keeps no session table: the cookies are the
// credential, and the seed cookie is sealed so it cannot be forged or reused
// past its expiry.
package session

import (
	"net/http"
	"time"

	"github.com/tide-labs/timevault-api/internal/crypto"
)

const (
	usernameCookie = "username"
	seedCookie     = "seed"

	// session lifetime before the seed token stops opening
	tokenTTL = 72 * time.Hour
)

// Identity is the authenticated (username, seed) pair extracted from a request.
type Identity struct {
	Username string
	Seed     string
}

// Carrier emits and reads identity cookies.
type Carrier struct {
	key []byte
}

// NewCarrier creates a Carrier whose token key is derived from the
// server-side salt.
func NewCarrier(salt string) (*Carrier, error) {
	key, err := crypto.SessionKey(salt)
	if err != nil {
		return nil, err
	}
	return &Carrier{key: key}, nil
}

// Emit attaches the identity cookies to the response. SameSite=None + Secure
// so browser clients on other origins can present them back.
func (c *Carrier) Emit(w http.ResponseWriter, id Identity) error {
	token, err := crypto.SealSeed(c.key, id.Username, id.Seed, tokenTTL)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     usernameCookie,
		Value:    id.Username,
		Path:     "/",
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     seedCookie,
		Value:    token,
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
	return nil
}

// Read extracts the identity from the request cookies. Returns false if
// either cookie is missing or the seed token does not open for the carried
// username (tampered, sealed for someone else, or expired).
func (c *Carrier) Read(r *http.Request) (Identity, bool) {
	userCookie, err := r.Cookie(usernameCookie)
	if err != nil {
		return Identity{}, false
	}
	tokenCookie, err := r.Cookie(seedCookie)
	if err != nil {
		return Identity{}, false
	}

	seed, err := crypto.OpenSeed(c.key, userCookie.Value, tokenCookie.Value)
	if err != nil {
		return Identity{}, false
	}
	return Identity{Username: userCookie.Value, Seed: seed}, true
}
