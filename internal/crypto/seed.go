package crypto

import (
	"encoding/hex"

	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters for seed derivation
	//
	// The work factor is deliberately low and fixed: the seed doubles as the
	// wallet's long-lived signing secret, so the same credentials must
	// reproduce the same seed on every login, cheaply enough to run per
	// request. This is not a password-verification hash.
	seedN      = 1 << 10
	seedR      = 8
	seedP      = 1
	seedKeyLen = 32
)

// DeriveSeed derives the deterministic wallet seed from credentials and the
// server-side salt. Same inputs always yield the same seed.
func DeriveSeed(username, password, salt string) string {
	key, err := scrypt.Key([]byte(username+":"+password), []byte(salt), seedN, seedR, seedP, seedKeyLen)
	if err != nil {
		// parameters are fixed constants, scrypt cannot reject them
		panic(err)
	}
	return hex.EncodeToString(key)
}
