package dto

// CompanyProfileDTO perfil de empresa opcional del usuario.
type CompanyProfileDTO struct {
	Name      string `json:"name,omitempty"`
	Address   string `json:"address,omitempty"`
	Website   string `json:"website,omitempty"`
	Industry  string `json:"industry,omitempty"`
	GSTNumber string `json:"gstNumber,omitempty"`
}

// RegisterRequest alta de usuario. El rol por defecto es "user".
type RegisterRequest struct {
	Name     string             `json:"name"`
	Email    string             `json:"email"`
	Password string             `json:"password"`
	Phone    string             `json:"phone"`
	Role     string             `json:"role"`
	Company  *CompanyProfileDTO `json:"company"`
}

// RegisterResponse confirma el envío del correo de verificación.
type RegisterResponse struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResendVerificationRequest reenvío del código de verificación.
type ResendVerificationRequest struct {
	Email string `json:"email"`
}

// UserBrief identidad mínima incluida junto al token.
type UserBrief struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TokenResponse token de sesión emitido en login y en verificación de email.
type TokenResponse struct {
	Token string    `json:"token"`
	Role  string    `json:"role"`
	User  UserBrief `json:"user"`
}

// UpdateDetailsRequest actualización de datos propios.
type UpdateDetailsRequest struct {
	Name    string             `json:"name"`
	Email   string             `json:"email"`
	Phone   string             `json:"phone"`
	Company *CompanyProfileDTO `json:"company"`
}

// UpdatePasswordRequest cambio de contraseña; exige la contraseña actual.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
