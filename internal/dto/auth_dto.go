package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// CrearTrabajadorRequest provisions a worker account. Role is always trabajador.
type CrearTrabajadorRequest struct {
	NombreCompleto string  `json:"nombre_completo" validate:"required,min=2,max=100"`
	Email          string  `json:"email"           validate:"required,email"`
	Telefono       *string `json:"telefono"        validate:"omitempty,max=30"`
	Password       string  `json:"password"        validate:"required,min=6"`
}

type CambiarEstadoRequest struct {
	Activo *bool `json:"activo" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	NombreCompleto string  `json:"nombre_completo"`
	Telefono       *string `json:"telefono"`
	Rol            string  `json:"rol"`
	Activo         bool    `json:"activo"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // seconds
	User         UsuarioResponse `json:"user"`
}

// SesionResponse is the body of GET /v1/auth/me.
type SesionResponse struct {
	Usuario UsuarioResponse `json:"usuario"`
	EsAdmin bool            `json:"es_admin"`
}
