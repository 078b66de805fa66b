package model

// AuthRequest represents request for POST /login
type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
