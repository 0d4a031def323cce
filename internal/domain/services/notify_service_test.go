package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"gbr-security-service/internal/domain/models"
	"gbr-security-service/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// blockingSink holds the worker until release is closed
type blockingSink struct {
	started chan struct{}
	release chan struct{}
}

func (s *blockingSink) Name() string { return "blocking" }

func (s *blockingSink) Deliver(ctx context.Context, _ NotificationJob) error {
	select {
	case s.started <- struct{}{}:
	default:
	}
	<-s.release
	return nil
}

func TestNotifyService_DeliversToEverySink(t *testing.T) {
	first, second := newRecordingSink(nil), newRecordingSink(nil)
	notifier := NewNotifyService([]NotificationSink{first, second}, 4, time.Second, zap.NewNop())

	require.NoError(t, notifier.Enqueue(NotificationJob{Kind: NotificationSecurityAction, Key: "1"}))

	assert.Equal(t, "1", first.next(t).Key)
	assert.Equal(t, "1", second.next(t).Key)

	require.NoError(t, notifier.Close(context.Background()))
	stats := notifier.Stats()
	assert.EqualValues(t, 2, stats.Delivered)
	assert.Zero(t, stats.Failed)
	assert.Empty(t, stats.Recent)
}

func TestNotifyService_RecordsFailures(t *testing.T) {
	sink := newRecordingSink(errors.New("connection refused"))
	notifier := NewNotifyService([]NotificationSink{sink}, 4, time.Second, zap.NewNop())

	require.NoError(t, notifier.Enqueue(NotificationJob{Kind: NotificationEmergencyCall, Key: "call-1"}))
	sink.next(t)
	require.NoError(t, notifier.Close(context.Background()))

	stats := notifier.Stats()
	assert.EqualValues(t, 1, stats.Failed)
	require.Len(t, stats.Recent, 1)
	assert.Equal(t, "call-1", stats.Recent[0].Key)
	assert.Equal(t, "recording", stats.Recent[0].Sink)
	assert.Equal(t, "connection refused", stats.Recent[0].Error)
}

func TestNotifyService_DropsWhenFull(t *testing.T) {
	sink := &blockingSink{started: make(chan struct{}, 1), release: make(chan struct{})}
	notifier := NewNotifyService([]NotificationSink{sink}, 1, time.Second, zap.NewNop())

	require.NoError(t, notifier.Enqueue(NotificationJob{Kind: NotificationSecurityAction, Key: "1"}))
	select {
	case <-sink.started:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not pick up the first job")
	}

	// one slot in the queue, the third job has nowhere to go
	require.NoError(t, notifier.Enqueue(NotificationJob{Kind: NotificationSecurityAction, Key: "2"}))
	require.NoError(t, notifier.Enqueue(NotificationJob{Kind: NotificationSecurityAction, Key: "3"}))

	stats := notifier.Stats()
	assert.EqualValues(t, 1, stats.Dropped)
	require.Len(t, stats.Recent, 1)
	assert.Equal(t, "3", stats.Recent[0].Key)
	assert.Equal(t, "queue", stats.Recent[0].Sink)

	close(sink.release)
	require.NoError(t, notifier.Close(context.Background()))
	assert.EqualValues(t, 2, notifier.Stats().Delivered)
}

func TestNotifyService_FailureLogIsBounded(t *testing.T) {
	sink := newRecordingSink(errors.New("boom"))
	sink.jobs = make(chan NotificationJob, maxFailureLog+10)
	notifier := NewNotifyService([]NotificationSink{sink}, maxFailureLog+10, time.Second, zap.NewNop())

	for i := 0; i < maxFailureLog+5; i++ {
		require.NoError(t, notifier.Enqueue(NotificationJob{Kind: NotificationSecurityAction, Key: "1"}))
	}
	require.NoError(t, notifier.Close(context.Background()))

	stats := notifier.Stats()
	assert.EqualValues(t, maxFailureLog+5, stats.Failed)
	assert.Len(t, stats.Recent, maxFailureLog)
}

func TestNotifyService_EnqueueAfterClose(t *testing.T) {
	notifier := NewNotifyService(nil, 1, time.Second, zap.NewNop())
	require.NoError(t, notifier.Close(context.Background()))
	require.NoError(t, notifier.Close(context.Background()))

	assert.ErrorIs(t, notifier.Enqueue(NotificationJob{Kind: NotificationSecurityAction}), ErrQueueClosed)
}

func TestNotifyService_CloseHonoursContext(t *testing.T) {
	sink := &blockingSink{started: make(chan struct{}, 1), release: make(chan struct{})}
	notifier := NewNotifyService([]NotificationSink{sink}, 1, time.Second, zap.NewNop())
	defer close(sink.release)

	require.NoError(t, notifier.Enqueue(NotificationJob{Kind: NotificationSecurityAction, Key: "1"}))
	<-sink.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, notifier.Close(ctx), context.DeadlineExceeded)
}

func TestHTTPNotificationSink_PostsSecurityAction(t *testing.T) {
	type captured struct {
		path string
		body map[string]interface{}
	}
	got := make(chan captured, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		_ = json.Unmarshal(data, &body)
		got <- captured{path: r.URL.Path, body: body}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := NewHTTPNotificationSink(server.URL+"/", time.Second)
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	err := sink.Deliver(context.Background(), NotificationJob{
		Kind: NotificationSecurityAction,
		Key:  "1",
		Payload: models.SecurityAction{
			PropertyID: "1",
			Action:     models.PropertyStatusDisarmed,
			Timestamp:  ts,
			UserID:     "1",
		},
	})
	require.NoError(t, err)

	req := <-got
	assert.Equal(t, SecurityActionPath, req.path)
	assert.Equal(t, "1", req.body["propertyId"])
	assert.Equal(t, "disarmed", req.body["action"])
	assert.Equal(t, "2024-03-01T12:30:00Z", req.body["timestamp"])
	assert.Equal(t, "1", req.body["userId"])
}

func TestHTTPNotificationSink_NonSuccessIsFailure(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, EmergencyCallPath, r.URL.Path)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sink := NewHTTPNotificationSink(server.URL, time.Second)
	err := sink.Deliver(context.Background(), NotificationJob{Kind: NotificationEmergencyCall, Payload: models.EmergencyCall{ID: "x"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, 1, hits)
}

func TestHTTPNotificationSink_UnknownKind(t *testing.T) {
	sink := NewHTTPNotificationSink("http://127.0.0.1:1", time.Second)
	assert.Error(t, sink.Deliver(context.Background(), NotificationJob{Kind: "weather"}))
}

func TestMQTTTopicFor(t *testing.T) {
	topic, retained, err := mqttTopicFor(NotificationJob{Kind: NotificationSecurityAction, Key: "2"})
	require.NoError(t, err)
	assert.Equal(t, "security/properties/2/status", topic)
	assert.True(t, retained)

	topic, retained, err = mqttTopicFor(NotificationJob{Kind: NotificationEmergencyCall, Key: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "security/emergency/calls", topic)
	assert.False(t, retained)

	_, _, err = mqttTopicFor(NotificationJob{Kind: "weather"})
	assert.Error(t, err)
}

func TestMQTTNotificationSink_NotConnected(t *testing.T) {
	sink := NewMQTTNotificationSink(&config.Config{
		MQTTBrokerURL: "tcp://127.0.0.1:1",
		MQTTClientID:  "notify-test",
	}, zap.NewNop())

	assert.False(t, sink.IsConnected())
	err := sink.Deliver(context.Background(), NotificationJob{Kind: NotificationEmergencyCall, Key: "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestMQTTNotificationSink_ConnectedFlagIsSynchronized(t *testing.T) {
	sink := NewMQTTNotificationSink(&config.Config{
		MQTTBrokerURL: "tcp://127.0.0.1:1",
		MQTTClientID:  "notify-test",
	}, zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			sink.setConnected(i%2 == 0)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = sink.Deliver(context.Background(), NotificationJob{Kind: NotificationEmergencyCall, Key: "abc"})
		}
	}()
	wg.Wait()

	// the flag alone is not enough while the client itself has no session
	sink.setConnected(true)
	assert.False(t, sink.IsConnected())
}
