package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/blog-platform-api/internal/models"
)

const userColumns = `id, login, email, password_hash, is_confirmed, confirmation_code, confirmation_expires_at, created_at`

var userSortColumns = map[string]string{
	"createdAt": "created_at",
	"login":     "login",
	"email":     "email",
	"id":        "id",
}

// UserRepository stores accounts and password recovery codes.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) findOne(ctx context.Context, op, where string, args ...interface{}) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE %s LIMIT 1", userColumns, where)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "find user by id", "id = $1", id)
}

// FindByLogin returns a user by login.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.findOne(ctx, "find user by login", "login = $1", login)
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "find user by email", "email = $1", email)
}

// FindByLoginOrEmail resolves the login form's loginOrEmail field.
func (r *UserRepository) FindByLoginOrEmail(ctx context.Context, loginOrEmail string) (*models.User, error) {
	return r.findOne(ctx, "find user by login or email", "(login = $1 OR email = $1)", loginOrEmail)
}

// FindByConfirmationCode returns the user holding a registration code.
func (r *UserRepository) FindByConfirmationCode(ctx context.Context, code string) (*models.User, error) {
	if _, err := uuid.Parse(code); err != nil {
		return nil, sql.ErrNoRows
	}
	return r.findOne(ctx, "find user by confirmation code", "confirmation_code = $1", code)
}

// ExistsByLoginOrEmail reports which of login and email are already taken.
func (r *UserRepository) ExistsByLoginOrEmail(ctx context.Context, login, email string) (loginTaken, emailTaken bool, err error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE login = $1) AS login_taken, EXISTS(SELECT 1 FROM users WHERE email = $2) AS email_taken`
	var row struct {
		LoginTaken bool `db:"login_taken"`
		EmailTaken bool `db:"email_taken"`
	}
	if err := r.db.GetContext(ctx, &row, query, login, email); err != nil {
		return false, false, fmt.Errorf("check user uniqueness: %w", err)
	}
	return row.LoginTaken, row.EmailTaken, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO users (id, login, email, password_hash, is_confirmed, confirmation_code, confirmation_expires_at, created_at) VALUES (:id, :login, :email, :password_hash, :is_confirmed, :confirmation_code, :confirmation_expires_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateConfirmationCode replaces the pending registration code.
func (r *UserRepository) UpdateConfirmationCode(ctx context.Context, id, code string, expiresAt time.Time) error {
	const query = `UPDATE users SET confirmation_code = $2, confirmation_expires_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, code, expiresAt); err != nil {
		return fmt.Errorf("update confirmation code: %w", err)
	}
	return nil
}

// MarkConfirmed confirms the account and clears its code. It reports false
// when the user was already confirmed, so a code can only be used once.
func (r *UserRepository) MarkConfirmed(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE users SET is_confirmed = TRUE, confirmation_code = NULL, confirmation_expires_at = NULL WHERE id = $1 AND is_confirmed = FALSE`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("mark user confirmed: %w", err)
	}
	return affected(res)
}

// UpdatePassword updates the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return updatePassword(ctx, r.db, id, passwordHash)
}

func updatePassword(ctx context.Context, exec sqlx.ExecerContext, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2 WHERE id = $1`
	if _, err := exec.ExecContext(ctx, query, id, passwordHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Delete removes a user. Sessions, comments and likes cascade.
func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return affected(res)
}

// List returns users matching the search terms with the total count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	q := filter.ListQuery.Normalize()

	var conditions []string
	var args []interface{}
	if term := strings.TrimSpace(filter.SearchLoginTerm); term != "" {
		args = append(args, likePattern(term))
		conditions = append(conditions, fmt.Sprintf("login ILIKE $%d", len(args))+likeEscape)
	}
	if term := strings.TrimSpace(filter.SearchEmailTerm); term != "" {
		args = append(args, likePattern(term))
		conditions = append(conditions, fmt.Sprintf("email ILIKE $%d", len(args))+likeEscape)
	}

	baseQuery := "FROM users"
	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " OR ")
	}

	listQuery := fmt.Sprintf("SELECT %s %s %s %s", userColumns, baseQuery, orderClause(q, userSortColumns, "created_at"), pageClause(q))
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+baseQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, total, nil
}

// UpsertRecoveryCode stores the single live recovery code of an email.
func (r *UserRepository) UpsertRecoveryCode(ctx context.Context, rc *models.RecoveryCode) error {
	if rc.CreatedAt.IsZero() {
		rc.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO recovery_codes (code, email, expires_at, created_at) VALUES (:code, :email, :expires_at, :created_at)
ON CONFLICT (email) DO UPDATE SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at`
	if _, err := r.db.NamedExecContext(ctx, query, rc); err != nil {
		return fmt.Errorf("upsert recovery code: %w", err)
	}
	return nil
}

// FindRecoveryCode returns the recovery record for a code.
func (r *UserRepository) FindRecoveryCode(ctx context.Context, code string) (*models.RecoveryCode, error) {
	if _, err := uuid.Parse(code); err != nil {
		return nil, sql.ErrNoRows
	}
	const query = `SELECT code, email, expires_at, created_at FROM recovery_codes WHERE code = $1 LIMIT 1`
	var rc models.RecoveryCode
	if err := r.db.GetContext(ctx, &rc, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find recovery code: %w", err)
	}
	return &rc, nil
}

// DeleteRecoveryCode consumes a recovery code. It reports false when the
// code was already used.
func (r *UserRepository) DeleteRecoveryCode(ctx context.Context, code string) (bool, error) {
	return deleteRecoveryCode(ctx, r.db, code)
}

// ResetPassword consumes a recovery code and stores the new password hash
// in one transaction. It reports false, leaving the password untouched,
// when the code was already used.
func (r *UserRepository) ResetPassword(ctx context.Context, code, userID, passwordHash string) (consumed bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin password reset: %w", err)
	}
	defer func() {
		if err != nil || !consumed {
			_ = tx.Rollback()
		}
	}()

	consumed, err = deleteRecoveryCode(ctx, tx, code)
	if err != nil || !consumed {
		return false, err
	}
	if err = updatePassword(ctx, tx, userID, passwordHash); err != nil {
		return false, err
	}
	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit password reset: %w", err)
	}
	return true, nil
}

func deleteRecoveryCode(ctx context.Context, exec sqlx.ExecerContext, code string) (bool, error) {
	res, err := exec.ExecContext(ctx, `DELETE FROM recovery_codes WHERE code = $1`, code)
	if err != nil {
		return false, fmt.Errorf("delete recovery code: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
