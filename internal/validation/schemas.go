package validation

// Schemas shared by the HTTP handlers.

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" msg:"required=El correo es obligatorio;email=Correo electrónico inválido"`
	Password string `json:"password" validate:"required" msg:"La contraseña es obligatoria" sanitize:"-"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required" msg:"El token de actualización es obligatorio" sanitize:"-"`
}

type CreateUserRequest struct {
	Name     string `json:"nombre" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=150" msg:"email=Correo electrónico inválido"`
	Password string `json:"password" validate:"required,min=8,max=72" msg:"min=La contraseña debe tener al menos 8 caracteres" sanitize:"-"`
	Role     string `json:"rol" validate:"required" msg:"El rol es obligatorio"`
}

// UpdateUserRoleRequest leaves role membership to the handler, which
// answers INVALID_ROLE with the accepted values.
type UpdateUserRoleRequest struct {
	Role string `json:"rol" validate:"required" msg:"El rol es obligatorio"`
}

// UserListQuery filters the user listing.
type UserListQuery struct {
	Role string `query:"rol" validate:"omitempty,role"`
}

// ContactRequest is the optional contact person of a client.
type ContactRequest struct {
	Name  string `json:"nombre" validate:"omitempty,max=100"`
	Email string `json:"email" validate:"omitempty,email" msg:"email=Correo electrónico inválido"`
}

type ClientRequest struct {
	Name    string          `json:"nombre" validate:"required,notblank,max=150" msg:"required=El nombre es obligatorio;*=Nombre inválido"`
	TaxID   string          `json:"rfc" validate:"required,rfc" msg:"required=El RFC es obligatorio;rfc=RFC inválido"`
	Email   string          `json:"email" validate:"omitempty,email,max=150" msg:"email=Correo electrónico inválido"`
	Phone   string          `json:"telefono" validate:"omitempty,max=20"`
	Address string          `json:"direccion" validate:"omitempty,max=255"`
	Contact *ContactRequest `json:"contacto" validate:"omitempty"`
}

// ListQuery is the pagination and search query of list endpoints.
type ListQuery struct {
	Page  int    `query:"page" validate:"omitempty,min=1"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Q     string `query:"q" validate:"omitempty,max=100"`
}

// Normalize fills defaults for omitted values.
func (q *ListQuery) Normalize() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
}

// Offset is the row offset of the requested page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type IDParams struct {
	ID uint64 `param:"id" validate:"required,min=1" msg:"Identificador inválido"`
}
