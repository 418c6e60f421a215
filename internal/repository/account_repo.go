package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"copilot-accounts/internal/domain"
)

// ErrDuplicateEmail indica choque contra el índice único de email.
var ErrDuplicateEmail = errors.New("email already registered")

const uniqueViolation = "23505"

// AccountRepository define el contrato de persistencia para cuentas activas.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	UpdateProfile(ctx context.Context, email, firstName, lastName, profilePicture string) error
	SetResetSecret(ctx context.Context, id, secret string, requestedAt time.Time) error
	ResetPassword(ctx context.Context, id, secret, passwordHash string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// PgAccountRepository implementa AccountRepository usando pgxpool.
type PgAccountRepository struct {
	pool *pgxpool.Pool
}

func NewPgAccountRepository(pool *pgxpool.Pool) *PgAccountRepository {
	return &PgAccountRepository{pool: pool}
}

func (r *PgAccountRepository) Create(ctx context.Context, account domain.Account) error {
	const query = `
		INSERT INTO accounts (id, email, f_name, l_name, profile_picture, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Email,
		account.FirstName,
		account.LastName,
		account.ProfilePicture,
		account.PasswordHash,
		account.CreatedAt,
	)
	return mapDuplicate(err)
}

func (r *PgAccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	const query = `
		SELECT id, email, f_name, l_name, profile_picture, password_hash,
		       reset_secret, reset_requested_at, created_at
		FROM accounts
		WHERE id = $1
	`
	return r.scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *PgAccountRepository) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	const query = `
		SELECT id, email, f_name, l_name, profile_picture, password_hash,
		       reset_secret, reset_requested_at, created_at
		FROM accounts
		WHERE email = $1
	`
	return r.scanAccount(r.pool.QueryRow(ctx, query, email))
}

func (r *PgAccountRepository) UpdateProfile(ctx context.Context, email, firstName, lastName, profilePicture string) error {
	const query = `
		UPDATE accounts
		SET f_name = $2, l_name = $3, profile_picture = $4
		WHERE email = $1
	`
	_, err := r.pool.Exec(ctx, query, email, firstName, lastName, profilePicture)
	return err
}

func (r *PgAccountRepository) SetResetSecret(ctx context.Context, id, secret string, requestedAt time.Time) error {
	// Cada solicitud pisa el secreto anterior: solo el más nuevo es válido.
	const query = `
		UPDATE accounts
		SET reset_secret = $2, reset_requested_at = $3
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, secret, requestedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgAccountRepository) ResetPassword(ctx context.Context, id, secret, passwordHash string) (bool, error) {
	// Escritura condicional: consume el secreto en el mismo statement para
	// que dos resets concurrentes no puedan usarlo dos veces.
	const query = `
		UPDATE accounts
		SET password_hash = $3, reset_secret = '', reset_requested_at = NULL
		WHERE id = $1 AND reset_secret = $2 AND reset_secret <> ''
	`
	tag, err := r.pool.Exec(ctx, query, id, secret, passwordHash)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgAccountRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM accounts WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgAccountRepository) scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.FirstName,
		&a.LastName,
		&a.ProfilePicture,
		&a.PasswordHash,
		&a.ResetSecret,
		&a.ResetRequestedAt,
		&a.CreatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}
	return a, nil
}

func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}
