// internal/domain/client/entity.go
package client

import (
	"database/sql"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Client is the canonical person record. Every identifying field is optional
// on its own; callers guarantee at least one of name, email or phone is set
// when a client is created.
type Client struct {
	ID   int64  `json:"id" db:"id"`
	Code string `json:"code" db:"code"`

	FirstName sql.NullString `json:"first_name,omitempty" db:"first_name"`
	LastName  sql.NullString `json:"last_name,omitempty" db:"last_name"`
	Email     sql.NullString `json:"email,omitempty" db:"email"`

	CountryID sql.NullInt64 `json:"country_id,omitempty" db:"country_id"`
	CityID    sql.NullInt64 `json:"city_id,omitempty" db:"city_id"`

	// Reference into the external billing system, if the client has one.
	BillingCustomerRef sql.NullString `json:"billing_customer_ref,omitempty" db:"billing_customer_ref"`

	Tags pq.StringArray `json:"tags,omitempty" db:"tags"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FullName joins the present name parts, or returns "" when neither is set.
func (c *Client) FullName() string {
	parts := []string{}
	if HasText(c.FirstName) {
		parts = append(parts, c.FirstName.String)
	}
	if HasText(c.LastName) {
		parts = append(parts, c.LastName.String)
	}
	return strings.Join(parts, " ")
}

// ContactNumber is a phone owned by exactly one client at a time. The phone
// string itself is not unique across clients; the conflict detector treats
// identical strings on different clients as a duplicate signal.
type ContactNumber struct {
	ID           int64     `json:"id" db:"id"`
	ClientID     int64     `json:"client_id" db:"client_id"`
	Phone        string    `json:"phone" db:"phone"`
	HasMessaging bool      `json:"has_messaging" db:"has_messaging"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// FieldPatch is a partial update of a client's identifying fields. Nil means
// "leave untouched".
type FieldPatch struct {
	FirstName          *string
	LastName           *string
	Email              *string
	CountryID          *int64
	CityID             *int64
	BillingCustomerRef *string
}

// IsZero reports whether the patch carries no changes.
func (p FieldPatch) IsZero() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.CountryID == nil && p.CityID == nil && p.BillingCustomerRef == nil
}

// HasText reports whether a nullable string is present and non-empty.
// Absent and empty-string are deliberately the same condition everywhere
// the dedupe logic checks a field.
func HasText(ns sql.NullString) bool {
	return ns.Valid && ns.String != ""
}

// NullText builds a nullable string, mapping "" to NULL.
func NullText(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
