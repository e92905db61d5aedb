package clients

// CreateRequest registers a client.
type CreateRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	TaxID    string `json:"tax_id" validate:"omitempty,max=20"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,max=40"`
	Address  string `json:"address" validate:"omitempty,max=300"`
	District string `json:"district" validate:"omitempty,max=100"`
	Notes    string `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateRequest patches a client; nil fields are left unchanged.
type UpdateRequest struct {
	Name     *string `json:"name" validate:"omitnil,min=1,max=200"`
	TaxID    *string `json:"tax_id" validate:"omitnil,max=20"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitnil,max=40"`
	Address  *string `json:"address" validate:"omitnil,max=300"`
	District *string `json:"district" validate:"omitnil,max=100"`
	Notes    *string `json:"notes" validate:"omitnil,max=2000"`
}
