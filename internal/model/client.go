package model

import "time"

// Client represents a customer of the plant.  This struct corresponds to a
// row in the `clientes` table.
type Client struct {
	ID           uint64    `json:"id"`            // clientes.id
	Name         string    `json:"nombre"`        // clientes.nombre
	TaxID        string    `json:"rfc"`           // clientes.rfc (unique)
	Email        string    `json:"email"`         // clientes.email
	Phone        string    `json:"telefono"`      // clientes.telefono
	Address      string    `json:"direccion"`     // clientes.direccion
	ContactName  string    `json:"contacto"`      // clientes.contacto_nombre
	ContactEmail string    `json:"contactoEmail"` // clientes.contacto_email
	CreatedBy    uint64    `json:"creadoPor"`     // clientes.created_by (users.id)
	CreatedAt    time.Time `json:"createdAt"`     // clientes.created_at
	UpdatedAt    time.Time `json:"updatedAt"`     // clientes.updated_at
}
