package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/classsync-api/internal/dto"
	"github.com/noah-isme/classsync-api/internal/models"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
)

func TestAdminResetRequiresConfirmation(t *testing.T) {
	store := newMemoryStore()
	booking, _ := newTestBookingService(store)
	seedAllCollections(t, booking)
	svc := NewAdminService(booking, "", zap.NewNop())

	_, err := svc.Reset(context.Background(), dto.ResetRequest{})
	assert.ErrorIs(t, err, appErrors.ErrConfirmationRequired)
	assert.Equal(t, 1, store.count(models.CollectionFixed))

	result, err := svc.Reset(context.Background(), dto.ResetRequest{Confirm: true})
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.Total)
	assert.Equal(t, int64(1), result.Removed["extraRes"])
	assert.Equal(t, 0, store.count(models.CollectionReservations))
}

func TestAdminResetChecksPin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("2468"), bcrypt.MinCost)
	require.NoError(t, err)

	store := newMemoryStore()
	booking, _ := newTestBookingService(store)
	seedAllCollections(t, booking)
	svc := NewAdminService(booking, string(hash), zap.NewNop())

	_, err = svc.Reset(context.Background(), dto.ResetRequest{Confirm: true, Pin: "0000"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Equal(t, 1, store.count(models.CollectionSubjects))

	_, err = svc.Reset(context.Background(), dto.ResetRequest{Confirm: true, Pin: "2468"})
	require.NoError(t, err)
	assert.Equal(t, 0, store.count(models.CollectionSubjects))
}
