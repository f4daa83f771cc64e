package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/blog-platform-api/internal/models"
	appErrors "github.com/noah-isme/blog-platform-api/pkg/errors"
)

type sessionValidator interface {
	ValidateSession(ctx context.Context, refreshToken string) (*models.RefreshClaims, *models.Device, error)
}

type deviceRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Device, error)
	FindByDeviceID(ctx context.Context, deviceID string) (*models.Device, error)
	Delete(ctx context.Context, userID, deviceID string) (bool, error)
	DeleteAllExcept(ctx context.Context, userID, exceptDeviceID string) error
}

// DeviceService lets a user inspect and terminate their sessions. Every
// call is authenticated by the caller's refresh token.
type DeviceService struct {
	sessions sessionValidator
	repo     deviceRepository
	audit    auditRepository
	logger   *zap.Logger
}

// NewDeviceService constructs a DeviceService.
func NewDeviceService(sessions sessionValidator, repo deviceRepository, audit auditRepository, logger *zap.Logger) *DeviceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceService{sessions: sessions, repo: repo, audit: audit, logger: logger}
}

// List returns the active sessions of the caller.
func (s *DeviceService) List(ctx context.Context, refreshToken string) ([]models.DeviceView, error) {
	_, current, err := s.sessions.ValidateSession(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	devices, err := s.repo.ListByUser(ctx, current.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list devices")
	}
	sort.SliceStable(devices, func(i, j int) bool { return devices[i].IssuedAt.After(devices[j].IssuedAt) })

	views := make([]models.DeviceView, 0, len(devices))
	for i := range devices {
		views = append(views, devices[i].View())
	}
	return views, nil
}

// DeleteOthers terminates every session of the caller except the current one.
func (s *DeviceService) DeleteOthers(ctx context.Context, refreshToken string) error {
	_, current, err := s.sessions.ValidateSession(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteAllExcept(ctx, current.UserID, current.DeviceID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete devices")
	}
	s.record(ctx, current, "*")
	return nil
}

// Delete terminates one session. The device must belong to the caller.
func (s *DeviceService) Delete(ctx context.Context, refreshToken, deviceID string) error {
	_, current, err := s.sessions.ValidateSession(ctx, refreshToken)
	if err != nil {
		return err
	}

	target, err := s.repo.FindByDeviceID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "device not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load device")
	}
	if target.UserID != current.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "device belongs to another user")
	}

	deleted, err := s.repo.Delete(ctx, current.UserID, deviceID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete device")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "device not found")
	}
	s.record(ctx, current, deviceID)
	return nil
}

func (s *DeviceService) record(ctx context.Context, current *models.Device, target string) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     &current.UserID,
		Action:     models.AuditActionDeviceRevoke,
		Resource:   "device",
		ResourceID: &target,
		IPAddress:  current.IP,
		UserAgent:  current.Title,
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", entry.Action), zap.Error(err))
	}
}
