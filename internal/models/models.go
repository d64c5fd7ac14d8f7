package models

import (
	"context"
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Roles is an unordered, duplicate-free role set stored as a postgres TEXT[].
type Roles []Role

func (r Roles) Has(role Role) bool {
	for _, existing := range r {
		if existing == role {
			return true
		}
	}
	return false
}

// With returns a copy of the set containing role.
func (r Roles) With(role Role) Roles {
	out := make(Roles, 0, len(r)+1)
	for _, existing := range r {
		if !out.Has(existing) {
			out = append(out, existing)
		}
	}
	if !out.Has(role) {
		out = append(out, role)
	}
	return out
}

func (r Roles) Strings() []string {
	out := make([]string, len(r))
	for i, role := range r {
		out[i] = string(role)
	}
	return out
}

func (r *Roles) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}

	roles := Roles{}
	for _, s := range arr {
		roles = roles.With(Role(s))
	}
	*r = roles
	return nil
}

func (r Roles) Value() (driver.Value, error) {
	return pq.StringArray(r.Strings()).Value()
}

type Account struct {
	ID           int64      `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Username     string     `json:"username" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Roles        Roles      `json:"roles" db:"roles"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	OTPCode      *string    `json:"-" db:"otp_code"`
	OTPExpiresAt *time.Time `json:"-" db:"otp_expires_at"`
	ApprovedBy   *int64     `json:"approved_by" db:"approved_by"`
	ApprovedAt   *time.Time `json:"approved_at" db:"approved_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

func (a *Account) IsAdmin() bool {
	return a.Roles.Has(RoleAdmin)
}

// AccountSnapshot is the public view of an account.
type AccountSnapshot struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	Username   string     `json:"username"`
	Roles      Roles      `json:"roles"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	ApprovedAt *time.Time `json:"approved_at"`
}

const MaskedEmail = "***@***.***"

func (a *Account) Snapshot() AccountSnapshot {
	return AccountSnapshot{
		ID:         a.ID,
		Email:      a.Email,
		Username:   a.Username,
		Roles:      a.Roles,
		IsActive:   a.IsActive,
		CreatedAt:  a.CreatedAt,
		ApprovedAt: a.ApprovedAt,
	}
}

// Principal is the caller resolved from a bearer token.
type Principal struct {
	AccountID int64
	Username  string
	Roles     Roles
	IsActive  bool
}

func (p Principal) IsAdmin() bool {
	return p.Roles.Has(RoleAdmin)
}

// CanApprove reports whether the caller may decide accounts and listings.
func (p Principal) CanApprove() bool {
	return p.IsActive && p.IsAdmin()
}

func (p Principal) CanReview() bool {
	return p.IsActive
}

// CanManage reports whether the caller may see or modify a listing regardless of its status.
func (p Principal) CanManage(listing *Listing) bool {
	return listing.AuthorID == p.AccountID || p.IsAdmin()
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
