// internal/domain/client/dto.go
package client

type CreateClientRequest struct {
	FirstName          string   `json:"first_name" binding:"max=255"`
	LastName           string   `json:"last_name" binding:"max=255"`
	Email              string   `json:"email" binding:"omitempty,email,max=255"`
	Phone              string   `json:"phone" binding:"max=20"`
	HasMessaging       bool     `json:"has_messaging"`
	CountryID          *int64   `json:"country_id"`
	CityID             *int64   `json:"city_id"`
	BillingCustomerRef string   `json:"billing_customer_ref" binding:"max=64"`
	Tags               []string `json:"tags"`
}

type UpdateClientRequest struct {
	FirstName          *string  `json:"first_name" binding:"omitempty,max=255"`
	LastName           *string  `json:"last_name" binding:"omitempty,max=255"`
	Email              *string  `json:"email" binding:"omitempty,email,max=255"`
	CountryID          *int64   `json:"country_id"`
	CityID             *int64   `json:"city_id"`
	BillingCustomerRef *string  `json:"billing_customer_ref" binding:"omitempty,max=64"`
	Tags               []string `json:"tags"`
}

type AddPhoneRequest struct {
	Phone        string `json:"phone" binding:"required,max=20"`
	HasMessaging bool   `json:"has_messaging"`
}

type MergeRequest struct {
	SecondaryClientID int64 `json:"secondary_client_id" binding:"required"`
}

type ListFilters struct {
	Search   string `form:"search"` // matches name, email or phone
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type ListResponse struct {
	Clients    []Client `json:"clients"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
}

type Detail struct {
	Client Client          `json:"client"`
	Phones []ContactNumber `json:"phones"`
}

type ConflictsResponse struct {
	Conflicts []ConflictCandidate `json:"conflicts"`
}
