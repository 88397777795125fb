package domain

// Claims is the identity payload carried inside a bearer token.
type Claims struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
