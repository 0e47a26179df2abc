package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/makerforge/quote3d-api/internal/application/dto"
	"github.com/makerforge/quote3d-api/internal/application/ports"
	"github.com/makerforge/quote3d-api/internal/domain"
	"github.com/makerforge/quote3d-api/internal/domain/entity"
	"github.com/makerforge/quote3d-api/internal/domain/repository"
	"github.com/makerforge/quote3d-api/pkg/jwt"
)

// Vigencia del código de verificación de email.
const verificationTTL = 30 * time.Minute

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de identidad: registro, verificación de email,
// login y mutaciones de la propia cuenta.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	mailer      ports.Mailer
	jwtCfg      JWTConfig
	frontendURL string
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, mailer ports.Mailer, jwtCfg JWTConfig, frontendURL string) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, mailer: mailer, jwtCfg: jwtCfg, frontendURL: frontendURL}
}

// Register crea un usuario sin verificar con código de 6 hex y vigencia de
// 30 minutos, y envía el correo de verificación. Si el correo no puede
// enviarse se elimina el usuario recién creado (acción compensatoria): no
// deben quedar cuentas sin forma de recibir su código.
func (uc *AuthUseCase) Register(in dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email y password son requeridos", domain.ErrInvalidInput)
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("%w: password debe tener al menos 6 caracteres", domain.ErrInvalidInput)
	}
	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	if !entity.ValidRole(role) {
		return nil, fmt.Errorf("%w: rol desconocido %q", domain.ErrInvalidInput, in.Role)
	}

	existing, err := uc.userRepo.GetByEmail(email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	code, err := verificationCode()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	expire := now.Add(verificationTTL)

	user := &entity.User{
		ID:                 uuid.New().String(),
		Name:               in.Name,
		Email:              email,
		PasswordHash:       string(hash),
		Role:               role,
		Phone:              in.Phone,
		Company:            companyFromDTO(in.Company),
		HoursBalance:       entity.DefaultHoursBalance,
		IsVerified:         false,
		VerificationCode:   code,
		VerificationExpire: &expire,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := uc.userRepo.Create(user); err != nil {
		return nil, err
	}

	if err := uc.sendVerificationEmail(user); err != nil {
		// Compensación: sin email de verificación la cuenta es inservible.
		_ = uc.userRepo.Delete(user.ID)
		return nil, fmt.Errorf("%w: no se pudo enviar el correo de verificación", domain.ErrUpstream)
	}

	return &dto.RegisterResponse{Email: user.Email, Message: "Verification email sent"}, nil
}

// VerifyEmail canjea el código: marca la cuenta como verificada, limpia el
// código y emite el token de sesión (la verificación vale como primer login).
func (uc *AuthUseCase) VerifyEmail(code string) (*dto.TokenResponse, error) {
	if code == "" {
		return nil, domain.ErrInvalidOrExpiredCode
	}
	user, err := uc.userRepo.GetByVerificationCode(code)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidOrExpiredCode
		}
		return nil, err
	}
	if user == nil || user.VerificationExpire == nil || !user.VerificationExpire.After(time.Now()) {
		return nil, domain.ErrInvalidOrExpiredCode
	}

	user.IsVerified = true
	user.VerificationCode = ""
	user.VerificationExpire = nil
	user.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(user); err != nil {
		return nil, err
	}

	return uc.tokenResponse(user)
}

// ResendVerification regenera código y vigencia para una cuenta aún sin verificar.
func (uc *AuthUseCase) ResendVerification(email string) (*dto.RegisterResponse, error) {
	user, err := uc.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if user.IsVerified {
		return nil, domain.ErrAlreadyVerified
	}

	code, err := verificationCode()
	if err != nil {
		return nil, err
	}
	expire := time.Now().Add(verificationTTL)
	user.VerificationCode = code
	user.VerificationExpire = &expire
	user.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(user); err != nil {
		return nil, err
	}

	if err := uc.sendVerificationEmail(user); err != nil {
		return nil, fmt.Errorf("%w: no se pudo enviar el correo de verificación", domain.ErrUpstream)
	}

	return &dto.RegisterResponse{Email: user.Email, Message: "Verification email resent"}, nil
}

// Login verifica credenciales y estado de verificación, y emite el token.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.TokenResponse, error) {
	if in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email y password son requeridos", domain.ErrInvalidInput)
	}
	user, err := uc.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, domain.ErrEmailNotVerified
	}
	return uc.tokenResponse(user)
}

// GetMe devuelve el perfil del usuario autenticado.
func (uc *AuthUseCase) GetMe(userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return dto.NewUserResponse(user), nil
}

// UpdateDetails actualiza los datos propios (nombre, email, teléfono, empresa).
func (uc *AuthUseCase) UpdateDetails(userID string, in dto.UpdateDetailsRequest) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(in.Email))
	}
	if in.Phone != "" {
		user.Phone = in.Phone
	}
	if in.Company != nil {
		user.Company = companyFromDTO(in.Company)
	}
	user.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(user); err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

// UpdatePassword cambia la contraseña tras re-verificar la actual, y emite
// un token nuevo.
func (uc *AuthUseCase) UpdatePassword(userID string, in dto.UpdatePasswordRequest) (*dto.TokenResponse, error) {
	if in.NewPassword == "" || len(in.NewPassword) < 6 {
		return nil, fmt.Errorf("%w: la nueva contraseña debe tener al menos 6 caracteres", domain.ErrInvalidInput)
	}
	user, err := uc.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(user); err != nil {
		return nil, err
	}
	return uc.tokenResponse(user)
}

func (uc *AuthUseCase) tokenResponse(user *entity.User) (*dto.TokenResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		Token: token,
		Role:  user.Role,
		User:  dto.UserBrief{ID: user.ID, Name: user.Name, Email: user.Email},
	}, nil
}

func (uc *AuthUseCase) sendVerificationEmail(user *entity.User) error {
	link := fmt.Sprintf("%s/verify-email/%s", uc.frontendURL, user.VerificationCode)
	return uc.mailer.Send([]string{user.Email}, "Email Verification", "verification", map[string]any{
		"UserName":        user.Name,
		"VerificationURL": link,
		"Code":            user.VerificationCode,
		"ExpireMinutes":   int(verificationTTL.Minutes()),
	})
}

// verificationCode genera 3 bytes aleatorios en hex (6 caracteres).
func verificationCode() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func companyFromDTO(c *dto.CompanyProfileDTO) entity.CompanyProfile {
	if c == nil {
		return entity.CompanyProfile{}
	}
	return entity.CompanyProfile{
		Name:      c.Name,
		Address:   c.Address,
		Website:   c.Website,
		Industry:  c.Industry,
		GSTNumber: c.GSTNumber,
	}
}
