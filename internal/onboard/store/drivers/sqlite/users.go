package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/platolabs/onboard/internal/onboard/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, password_hash, role, verified, verification_code, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) GetUserByPendingCode(ctx context.Context, code string) (domain.User, error) {
	// Both conditions matter: a consumed code leaves verified=1 behind,
	// so the row stops matching even if the code value were reused.
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE verification_code = ? AND verified = 0`, code)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, role, verified, verification_code, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Role.String(), u.Verified,
		mapOptionalString(u.VerificationCode), now, now)
	return mapConstraint(err)
}

func (r *usersRepo) SetVerificationCode(ctx context.Context, userID string, code string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET verification_code = ?, updated_at = ? WHERE id = ?`,
		code, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) MarkVerified(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET verified = 1, verification_code = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	return err
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u    domain.User
		role string
		code sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.Verified, &code, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Role = domain.Role(role)
	u.VerificationCode = mapNullStringPtr(code)
	return u, nil
}

// requireRowAffected turns a zero-row UPDATE into ErrNotFound so
// callers can tell a missing user from a successful no-op.
func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}
