package model

import "time"

// User represents an account record as stored in the `users` table.
// Each field corresponds to a column.  The json tags are omitted here
// because these structs are used internally by the repository layer;
// handlers define separate response types with appropriate JSON tags.
//
// Fields:
//  ID             – primary key identifier of the user.
//  Matricule      – unique university registration number.
//  FirstName      – given name.
//  LastName       – family name.
//  Email          – unique email address.
//  PasswordHash   – bcrypt hashed password.
//  Role           – account role (ADMIN, STAFF, STUDENT).
//  IsActive       – whether the account is active.
//  QuotaRemaining – remaining meal quota for the user.
//  CreatedAt      – timestamp of creation.
//  UpdatedAt      – timestamp of last update.
type User struct {
	ID             uint64    // users.id
	Matricule      string    // users.matricule
	FirstName      string    // users.first_name
	LastName       string    // users.last_name
	Email          string    // users.email
	PasswordHash   string    // users.password_hash
	Role           Role      // users.role
	IsActive       bool      // users.is_active
	QuotaRemaining int       // users.quota_remaining
	CreatedAt      time.Time // users.created_at
	UpdatedAt      time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and carries expiry and revocation
// metadata.  The plain token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
