package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/makerforge/quote3d-api/internal/domain"
	"github.com/makerforge/quote3d-api/internal/domain/entity"
	"github.com/makerforge/quote3d-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, name, email, password_hash, role, phone,
	company_name, company_address, company_website, company_industry, company_gst,
	hours_balance, is_verified, verification_code, verification_expire,
	created_at, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL (usable con pool o tx).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste una cuenta nueva. El email es único (se guarda lowercased).
func (r *UserRepo) Create(u *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Phone,
		u.Company.Name, u.Company.Address, u.Company.Website, u.Company.Industry, u.Company.GSTNumber,
		u.HoursBalance, u.IsVerified, u.VerificationCode, u.VerificationExpire,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(id string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByEmail obtiene un usuario por email (lowercased).
func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, email))
}

// GetByVerificationCode busca por código de verificación pendiente.
func (r *UserRepo) GetByVerificationCode(code string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE verification_code = $1 AND verification_code <> ''`
	return r.scanOne(r.q.QueryRow(context.Background(), query, code))
}

// Update actualiza todos los campos mutables de la cuenta.
func (r *UserRepo) Update(u *entity.User) error {
	query := `
		UPDATE users SET name = $2, email = $3, password_hash = $4, role = $5, phone = $6,
			company_name = $7, company_address = $8, company_website = $9, company_industry = $10, company_gst = $11,
			hours_balance = $12, is_verified = $13, verification_code = $14, verification_expire = $15,
			updated_at = $16
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Phone,
		u.Company.Name, u.Company.Address, u.Company.Website, u.Company.Industry, u.Company.GSTNumber,
		u.HoursBalance, u.IsVerified, u.VerificationCode, u.VerificationExpire,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List lista usuarios con paginación, más recientes primero.
func (r *UserRepo) List(limit, offset int) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// Count devuelve el total de cuentas.
func (r *UserRepo) Count() (int, error) {
	var n int
	err := r.q.QueryRow(context.Background(), `SELECT count(*) FROM users`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Delete elimina una cuenta.
func (r *UserRepo) Delete(id string) error {
	cmd, err := r.q.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ListAdmins devuelve todas las cuentas admin.
func (r *UserRepo) ListAdmins() ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, entity.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// DebitHours descuenta horas con un UPDATE condicional: solo aplica si el
// saldo alcanza, sin ventana entre lectura y escritura.
func (r *UserRepo) DebitHours(userID string, hours decimal.Decimal) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE users SET hours_balance = hours_balance - $2, updated_at = now()
		 WHERE id = $1 AND hours_balance >= $2`,
		userID, hours,
	)
	if err != nil {
		return fmt.Errorf("debit hours: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInsufficientHours
	}
	return nil
}

// CreditHours acredita horas compradas.
func (r *UserRepo) CreditHours(userID string, hours decimal.Decimal) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE users SET hours_balance = hours_balance + $2, updated_at = now() WHERE id = $1`,
		userID, hours,
	)
	if err != nil {
		return fmt.Errorf("credit hours: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) scanOne(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone,
		&u.Company.Name, &u.Company.Address, &u.Company.Website, &u.Company.Industry, &u.Company.GSTNumber,
		&u.HoursBalance, &u.IsVerified, &u.VerificationCode, &u.VerificationExpire,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) scanMany(rows pgx.Rows) ([]*entity.User, error) {
	var out []*entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone,
			&u.Company.Name, &u.Company.Address, &u.Company.Website, &u.Company.Industry, &u.Company.GSTNumber,
			&u.HoursBalance, &u.IsVerified, &u.VerificationCode, &u.VerificationExpire,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}
