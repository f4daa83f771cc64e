package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/blog-platform-api/internal/models"
)

const deviceColumns = `user_id, device_id, token_id, issued_at, expires_at, ip, title`

// DeviceRepository persists refresh token sessions, one row per
// (user, device).
type DeviceRepository struct {
	db *sqlx.DB
}

// NewDeviceRepository creates a new instance of DeviceRepository.
func NewDeviceRepository(db *sqlx.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// Upsert creates the session or overwrites the existing one for the same
// (user, device) pair.
func (r *DeviceRepository) Upsert(ctx context.Context, device *models.Device) error {
	const query = `INSERT INTO devices (user_id, device_id, token_id, issued_at, expires_at, ip, title)
VALUES (:user_id, :device_id, :token_id, :issued_at, :expires_at, :ip, :title)
ON CONFLICT (user_id, device_id) DO UPDATE SET token_id = EXCLUDED.token_id, issued_at = EXCLUDED.issued_at,
expires_at = EXCLUDED.expires_at, ip = EXCLUDED.ip, title = EXCLUDED.title`
	if _, err := r.db.NamedExecContext(ctx, query, device); err != nil {
		return fmt.Errorf("upsert device: %w", err)
	}
	return nil
}

// Rotate overwrites the session only while it still carries prevTokenID.
// It reports false when another refresh rotated the session first.
func (r *DeviceRepository) Rotate(ctx context.Context, next *models.Device, prevTokenID string) (bool, error) {
	const query = `UPDATE devices SET token_id = $3, issued_at = $4, expires_at = $5, ip = $6, title = $7
WHERE user_id = $1 AND device_id = $2 AND token_id = $8`
	res, err := r.db.ExecContext(ctx, query, next.UserID, next.DeviceID, next.TokenID, next.IssuedAt, next.ExpiresAt, next.IP, next.Title, prevTokenID)
	if err != nil {
		return false, fmt.Errorf("rotate device: %w", err)
	}
	return affected(res)
}

// Find returns the session of a user's device or sql.ErrNoRows.
func (r *DeviceRepository) Find(ctx context.Context, userID, deviceID string) (*models.Device, error) {
	if !validUUIDs(userID, deviceID) {
		return nil, sql.ErrNoRows
	}
	query := fmt.Sprintf("SELECT %s FROM devices WHERE user_id = $1 AND device_id = $2 LIMIT 1", deviceColumns)
	var device models.Device
	if err := r.db.GetContext(ctx, &device, query, userID, deviceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find device: %w", err)
	}
	return &device, nil
}

// FindByDeviceID looks a session up regardless of its owner.
func (r *DeviceRepository) FindByDeviceID(ctx context.Context, deviceID string) (*models.Device, error) {
	if !validUUIDs(deviceID) {
		return nil, sql.ErrNoRows
	}
	query := fmt.Sprintf("SELECT %s FROM devices WHERE device_id = $1 LIMIT 1", deviceColumns)
	var device models.Device
	if err := r.db.GetContext(ctx, &device, query, deviceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find device by id: %w", err)
	}
	return &device, nil
}

// ListByUser returns the user's sessions, most recently active first.
func (r *DeviceRepository) ListByUser(ctx context.Context, userID string) ([]models.Device, error) {
	query := fmt.Sprintf("SELECT %s FROM devices WHERE user_id = $1 ORDER BY issued_at DESC", deviceColumns)
	var devices []models.Device
	if err := r.db.SelectContext(ctx, &devices, query, userID); err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}

// Delete removes one session and reports whether it existed.
func (r *DeviceRepository) Delete(ctx context.Context, userID, deviceID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE user_id = $1 AND device_id = $2`, userID, deviceID)
	if err != nil {
		return false, fmt.Errorf("delete device: %w", err)
	}
	return affected(res)
}

// DeleteAllExcept terminates every session of the user but one.
func (r *DeviceRepository) DeleteAllExcept(ctx context.Context, userID, exceptDeviceID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE user_id = $1 AND device_id <> $2`, userID, exceptDeviceID); err != nil {
		return fmt.Errorf("delete other devices: %w", err)
	}
	return nil
}

// DeleteAllForUser terminates every session of the user.
func (r *DeviceRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete user devices: %w", err)
	}
	return nil
}

func validUUIDs(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}
