package models

// JWTClaims is the subset of a Supabase access token the server reads
type JWTClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Exp   int64  `json:"exp"`
	Iat   int64  `json:"iat"`
	Iss   string `json:"iss"`
}

// Roles issued by Supabase
const (
	RoleAuthenticated = "authenticated"
	RoleServiceRole   = "service_role"
	RoleAnon          = "anon"
)

// Caller is the authenticated principal behind a request
type Caller struct {
	Subject string `json:"sub"`
	Role    string `json:"role"`
	Email   string `json:"email,omitempty"`
}

// IsService reports whether the caller holds the service role key
func (c *Caller) IsService() bool {
	return c != nil && c.Role == RoleServiceRole
}

// CallerFromClaims builds a Caller from verified token claims
func CallerFromClaims(claims JWTClaims) *Caller {
	return &Caller{Subject: claims.Sub, Role: claims.Role, Email: claims.Email}
}
