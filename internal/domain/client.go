package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client is a borrower. Loans reference clients by ID.
type Client struct {
	ID         uuid.UUID `json:"id" db:"id"`
	FirstName  string    `json:"first_name" db:"first_name"`
	LastName   string    `json:"last_name" db:"last_name"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Phone      string    `json:"phone" db:"phone"`
	Address    string    `json:"address" db:"address"`
	Notes      string    `json:"notes" db:"notes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type CreateClientRequest struct {
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"max=100"`
	DocumentID string `json:"document_id" validate:"max=50"`
	Phone      string `json:"phone" validate:"max=30"`
	Address    string `json:"address" validate:"max=255"`
	Notes      string `json:"notes"`
}
