package services

import (
	"context"
	"testing"
	"time"

	"gbr-security-service/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEmergency(t *testing.T, delay time.Duration) (*EmergencyService, *recordingSink) {
	t.Helper()

	sink := newRecordingSink(nil)
	notifier := NewNotifyService([]NotificationSink{sink}, 8, time.Second, zap.NewNop())
	t.Cleanup(func() { _ = notifier.Close(context.Background()) })

	emergency := NewEmergencyService(newTestRegistry(t), notifier, delay, zap.NewNop())
	t.Cleanup(emergency.Close)
	return emergency, sink
}

func TestEmergencyService_Seeded(t *testing.T) {
	emergency, _ := newTestEmergency(t, time.Hour)

	calls := emergency.ListCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "1", calls[0].ID)
	assert.Equal(t, "user123", calls[0].UserID)
	assert.Equal(t, models.EmergencyTypeSecurity, calls[0].Type)
	assert.Equal(t, models.EmergencyCallStatusDispatched, calls[0].Status)
	assert.Equal(t, "Сработал датчик движения", calls[0].Description)
}

func TestEmergencyService_CreateCallInsertsFirst(t *testing.T) {
	emergency, sink := newTestEmergency(t, time.Hour)

	call, err := emergency.CreateCall(context.Background(), models.EmergencyTypeFire, "smoke smell", "1")
	require.NoError(t, err)

	assert.NotEmpty(t, call.ID)
	assert.Equal(t, DemoPropertyID, call.PropertyID)
	assert.Equal(t, "ул. Ленина, 15, кв. 42", call.Location)
	assert.Equal(t, models.EmergencyCallStatusPending, call.Status)
	assert.Equal(t, "smoke smell", call.Description)
	assert.WithinDuration(t, time.Now(), call.Timestamp, time.Second)

	calls := emergency.ListCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, call.ID, calls[0].ID)
	assert.Equal(t, "1", calls[1].ID)

	job := sink.next(t)
	assert.Equal(t, NotificationEmergencyCall, job.Kind)
	assert.Equal(t, call.ID, job.Key)
	assert.Equal(t, *call, job.Payload)
}

func TestEmergencyService_InvalidCategory(t *testing.T) {
	emergency, _ := newTestEmergency(t, time.Hour)

	_, err := emergency.CreateCall(context.Background(), "plumber", "", "1")
	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.Len(t, emergency.ListCalls(), 1)
}

func TestEmergencyService_DispatchesAfterDelay(t *testing.T) {
	emergency, _ := newTestEmergency(t, 30*time.Millisecond)

	call, err := emergency.CreateCall(context.Background(), models.EmergencyTypeMedical, "", "1")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := emergency.GetCall(call.ID)
		return err == nil && got.Status == models.EmergencyCallStatusDispatched
	}, 2*time.Second, 5*time.Millisecond)
}

func TestEmergencyService_RemoveStopsDispatch(t *testing.T) {
	emergency, _ := newTestEmergency(t, 50*time.Millisecond)

	call, err := emergency.CreateCall(context.Background(), models.EmergencyTypePolice, "", "1")
	require.NoError(t, err)
	require.NoError(t, emergency.RemoveCall(call.ID))

	time.Sleep(100 * time.Millisecond)

	_, err = emergency.GetCall(call.ID)
	assert.ErrorIs(t, err, ErrCallNotFound)
	assert.Len(t, emergency.ListCalls(), 1)
	assert.ErrorIs(t, emergency.RemoveCall(call.ID), ErrCallNotFound)
}

func TestEmergencyService_CloseStopsPendingTimers(t *testing.T) {
	emergency, _ := newTestEmergency(t, 50*time.Millisecond)

	call, err := emergency.CreateCall(context.Background(), models.EmergencyTypeSecurity, "", "1")
	require.NoError(t, err)
	emergency.Close()

	time.Sleep(100 * time.Millisecond)

	got, err := emergency.GetCall(call.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EmergencyCallStatusPending, got.Status)
}

func TestEmergencyService_Categories(t *testing.T) {
	emergency, _ := newTestEmergency(t, time.Hour)

	categories := emergency.Categories()
	require.Len(t, categories, 4)
	assert.Equal(t, models.EmergencyTypeSecurity, categories[0].Value)

	categories[0].Label = "changed"
	assert.NotEqual(t, "changed", models.EmergencyCategories[0].Label)
}
