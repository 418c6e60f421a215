package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"copilot-accounts/internal/domain"
)

// OTPRepository define el contrato de persistencia para códigos OTP vivos.
type OTPRepository interface {
	Upsert(ctx context.Context, challenge domain.OTPChallenge) error
	Consume(ctx context.Context, email, code string) (bool, error)
}

// PgOTPRepository implementa OTPRepository usando pgxpool.
type PgOTPRepository struct {
	pool *pgxpool.Pool
}

func NewPgOTPRepository(pool *pgxpool.Pool) *PgOTPRepository {
	return &PgOTPRepository{pool: pool}
}

func (r *PgOTPRepository) Upsert(ctx context.Context, challenge domain.OTPChallenge) error {
	// Un solo OTP vivo por email: el nuevo pisa al anterior.
	const query = `
		INSERT INTO otp_challenges (email, code, assoc_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET code = EXCLUDED.code, assoc_id = EXCLUDED.assoc_id, created_at = EXCLUDED.created_at
	`
	_, err := r.pool.Exec(ctx, query,
		challenge.Email,
		challenge.Code,
		challenge.AssocID,
		challenge.CreatedAt,
	)
	return err
}

// Consume borra el desafío solo si el código coincide. Devuelve false tanto
// para código equivocado como para email sin OTP pendiente.
func (r *PgOTPRepository) Consume(ctx context.Context, email, code string) (bool, error) {
	const query = `DELETE FROM otp_challenges WHERE email = $1 AND code = $2`
	tag, err := r.pool.Exec(ctx, query, email, code)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
