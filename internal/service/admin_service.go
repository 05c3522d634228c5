package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/classsync-api/internal/dto"
	"github.com/noah-isme/classsync-api/internal/models"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
)

type resetStore interface {
	ClearAll(ctx context.Context) (map[models.Collection]int64, error)
}

// AdminService guards the destructive reset operation.
type AdminService struct {
	store   resetStore
	pinHash string
	logger  *zap.Logger
}

// NewAdminService constructs an AdminService. An empty pinHash disables the PIN check.
func NewAdminService(store resetStore, pinHash string, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{store: store, pinHash: pinHash, logger: logger}
}

// Reset wipes every collection after explicit confirmation.
func (s *AdminService) Reset(ctx context.Context, req dto.ResetRequest) (*dto.ResetResult, error) {
	if !req.Confirm {
		return nil, appErrors.Clone(appErrors.ErrConfirmationRequired, "reset must be confirmed explicitly")
	}
	if s.pinHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.pinHash), []byte(req.Pin)); err != nil {
			s.logger.Warn("reset rejected: pin mismatch")
			return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid admin pin")
		}
	}

	removed, err := s.store.ClearAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &dto.ResetResult{Removed: make(map[string]int64, len(removed))}
	for c, n := range removed {
		result.Removed[string(c)] = n
		result.Total += n
	}
	s.logger.Warn("all timetable data cleared", zap.Int64("records", result.Total))
	return result, nil
}
