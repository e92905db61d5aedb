// Package clients is the customer registry.
package clients

import (
	"fmt"
	"time"

	"github.com/fla-ops/fla/internal/platform/httpx"
)

// ErrNotFound is returned for unknown client ids.
var ErrNotFound = fmt.Errorf("client %w", httpx.ErrNotFound)

// Client is a customer the company quotes and bills.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	District  string    `json:"district,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListFilter narrows List results.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}
