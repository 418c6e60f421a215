package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"copilot-accounts/internal/domain"
)

// PendingRepository define el contrato de persistencia para registros
// provisionales de signup.
type PendingRepository interface {
	Create(ctx context.Context, pending domain.PendingSignup) error
	GetByID(ctx context.Context, id string) (domain.PendingSignup, error)
	GetByEmail(ctx context.Context, email string) (domain.PendingSignup, error)
	Promote(ctx context.Context, id string) (domain.Account, error)
}

// PgPendingRepository implementa PendingRepository usando pgxpool.
type PgPendingRepository struct {
	pool *pgxpool.Pool
}

func NewPgPendingRepository(pool *pgxpool.Pool) *PgPendingRepository {
	return &PgPendingRepository{pool: pool}
}

func (r *PgPendingRepository) Create(ctx context.Context, pending domain.PendingSignup) error {
	const query = `
		INSERT INTO pending_signups (id, email, f_name, l_name, profile_picture, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		pending.ID,
		pending.Email,
		pending.FirstName,
		pending.LastName,
		pending.ProfilePicture,
		pending.PasswordHash,
		pending.CreatedAt,
	)
	return mapDuplicate(err)
}

func (r *PgPendingRepository) GetByID(ctx context.Context, id string) (domain.PendingSignup, error) {
	const query = `
		SELECT id, email, f_name, l_name, profile_picture, password_hash, created_at
		FROM pending_signups
		WHERE id = $1
	`
	var p domain.PendingSignup
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Email,
		&p.FirstName,
		&p.LastName,
		&p.ProfilePicture,
		&p.PasswordHash,
		&p.CreatedAt,
	)
	if err != nil {
		return domain.PendingSignup{}, err
	}
	return p, nil
}

// Promote consume el registro provisional y crea la cuenta activa en una
// transacción. El DELETE condicional garantiza un solo uso: el segundo
// intento no encuentra fila y devuelve pgx.ErrNoRows.
func (r *PgPendingRepository) GetByEmail(ctx context.Context, email string) (domain.PendingSignup, error) {
	const query = `
		SELECT id, email, f_name, l_name, profile_picture, password_hash, created_at
		FROM pending_signups
		WHERE email = $1
	`
	var p domain.PendingSignup
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&p.ID,
		&p.Email,
		&p.FirstName,
		&p.LastName,
		&p.ProfilePicture,
		&p.PasswordHash,
		&p.CreatedAt,
	)
	if err != nil {
		return domain.PendingSignup{}, err
	}
	return p, nil
}

func (r *PgPendingRepository) Promote(ctx context.Context, id string) (domain.Account, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Account{}, err
	}
	defer tx.Rollback(ctx)

	const deleteQuery = `
		DELETE FROM pending_signups
		WHERE id = $1
		RETURNING id, email, f_name, l_name, profile_picture, password_hash, created_at
	`
	var p domain.PendingSignup
	err = tx.QueryRow(ctx, deleteQuery, id).Scan(
		&p.ID,
		&p.Email,
		&p.FirstName,
		&p.LastName,
		&p.ProfilePicture,
		&p.PasswordHash,
		&p.CreatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}

	account := domain.Account{
		ID:             p.ID,
		Email:          p.Email,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		ProfilePicture: p.ProfilePicture,
		PasswordHash:   p.PasswordHash,
		CreatedAt:      p.CreatedAt,
	}
	const insertQuery = `
		INSERT INTO accounts (id, email, f_name, l_name, profile_picture, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.Exec(ctx, insertQuery,
		account.ID,
		account.Email,
		account.FirstName,
		account.LastName,
		account.ProfilePicture,
		account.PasswordHash,
		account.CreatedAt,
	)
	if err != nil {
		return domain.Account{}, mapDuplicate(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}
