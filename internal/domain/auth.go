package domain

// BearerScheme is the token type returned to clients.
const BearerScheme = "Bearer"

// JwtResult is returned by register and login.
type JwtResult struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}
