// internal/domain/related/entity.go
package related

import "time"

// Kind names a family of rows owned by a client through an owning-client
// foreign key. The merge orchestrator re-points these wholesale.
type Kind string

const (
	KindCase     Kind = "case"
	KindNote     Kind = "note"
	KindDocument Kind = "document"
	KindLead     Kind = "lead_reference"
)

// Case is a tracked matter for a client. Opaque to dedupe except for its
// owning client and human-facing code.
type Case struct {
	ID        int64     `json:"id" db:"id"`
	ClientID  int64     `json:"client_id" db:"client_id"`
	Code      string    `json:"code" db:"code"`
	Title     string    `json:"title" db:"title"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ClientNote struct {
	ID        int64     `json:"id" db:"id"`
	ClientID  int64     `json:"client_id" db:"client_id"`
	AuthorID  int64     `json:"author_id" db:"author_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ClientDocument struct {
	ID        int64     `json:"id" db:"id"`
	ClientID  int64     `json:"client_id" db:"client_id"`
	FileName  string    `json:"file_name" db:"file_name"`
	FileKey   string    `json:"file_key" db:"file_key"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LeadReference links a client to the external lead it originated from.
type LeadReference struct {
	ID          int64     `json:"id" db:"id"`
	ClientID    int64     `json:"client_id" db:"client_id"`
	Source      string    `json:"source" db:"source"`
	ExternalRef string    `json:"external_ref" db:"external_ref"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type CreateCaseRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

type AddNoteRequest struct {
	Body string `json:"body" binding:"required"`
}
