package models

// TokenPair is the JWT pair returned by the token endpoint.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// User is the authenticated user's profile.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsActive  bool   `json:"is_active"`
	Avatar    string `json:"avatar"`
	Username  string `json:"username"`
}
