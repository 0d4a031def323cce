package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"gbr-security-service/internal/infrastructure/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Remote endpoints, relative to NOTIFY_BASE_URL
const (
	SecurityActionPath = "/api/security-action"
	EmergencyCallPath  = "/api/emergency-call"
)

// MQTT topics
const (
	TopicPropertyStatus = "security/properties/%s/status"
	TopicEmergencyCalls = "security/emergency/calls"
)

// HTTPNotificationSink posts jobs as JSON to the remote service
type HTTPNotificationSink struct {
	client *resty.Client
}

// NewHTTPNotificationSink creates a sink; delivery is attempted once
func NewHTTPNotificationSink(baseURL string, timeout time.Duration) *HTTPNotificationSink {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &HTTPNotificationSink{client: client}
}

func (s *HTTPNotificationSink) Name() string { return "http" }

// Deliver posts the job payload; any non-2xx answer is a failure
func (s *HTTPNotificationSink) Deliver(ctx context.Context, job NotificationJob) error {
	path, err := httpPathFor(job.Kind)
	if err != nil {
		return err
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(job.Payload).
		Post(path)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("post %s: unexpected status %d", path, resp.StatusCode())
	}
	return nil
}

func httpPathFor(kind NotificationKind) (string, error) {
	switch kind {
	case NotificationSecurityAction:
		return SecurityActionPath, nil
	case NotificationEmergencyCall:
		return EmergencyCallPath, nil
	default:
		return "", fmt.Errorf("unknown notification kind %q", kind)
	}
}

// mqttTopicFor maps a job to its topic; property status is retained
func mqttTopicFor(job NotificationJob) (string, bool, error) {
	switch job.Kind {
	case NotificationSecurityAction:
		return fmt.Sprintf(TopicPropertyStatus, job.Key), true, nil
	case NotificationEmergencyCall:
		return TopicEmergencyCalls, false, nil
	default:
		return "", false, fmt.Errorf("unknown notification kind %q", job.Kind)
	}
}

// MQTTNotificationSink publishes jobs to the broker
type MQTTNotificationSink struct {
	Client   mqtt.Client
	Config   *config.Config
	logger   *zap.Logger
	qos      byte
	retained bool

	connectedMutex sync.RWMutex
	connected      bool
}

// NewMQTTNotificationSink builds the client; call Connect before use
func NewMQTTNotificationSink(cfg *config.Config, logger *zap.Logger) *MQTTNotificationSink {
	s := &MQTTNotificationSink{
		Config:   cfg,
		logger:   logger,
		qos:      byte(cfg.MQTTQoS),
		retained: cfg.MQTTRetained,
	}
	s.setupMQTTClient()
	return s
}

func (s *MQTTNotificationSink) setupMQTTClient() {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.Config.MQTTBrokerURL)
	// unique per instance so replicas do not kick each other off
	opts.SetClientID(fmt.Sprintf("%s-%s", s.Config.MQTTClientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)
	opts.SetOrderMatters(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)

	if s.Config.MQTTUsername != "" {
		opts.SetUsername(s.Config.MQTTUsername)
		opts.SetPassword(s.Config.MQTTPassword)
	}

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.logger.Warn("mqtt connection lost", zap.Error(err))
		s.setConnected(false)
	})
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		s.logger.Info("mqtt connected", zap.String("broker", s.Config.MQTTBrokerURL))
		s.setConnected(true)
	})

	s.Client = mqtt.NewClient(opts)
}

func (s *MQTTNotificationSink) setConnected(v bool) {
	s.connectedMutex.Lock()
	s.connected = v
	s.connectedMutex.Unlock()
}

// IsConnected reports whether the broker session is up
func (s *MQTTNotificationSink) IsConnected() bool {
	s.connectedMutex.RLock()
	defer s.connectedMutex.RUnlock()
	return s.connected && s.Client.IsConnected()
}

// Connect waits for the first connection; on timeout the client keeps retrying in the background
func (s *MQTTNotificationSink) Connect(timeout time.Duration) error {
	token := s.Client.Connect()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt connect to %s timed out", s.Config.MQTTBrokerURL)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	s.setConnected(true)
	return nil
}

// Disconnect closes the broker connection
func (s *MQTTNotificationSink) Disconnect() {
	if s.Client != nil && s.Client.IsConnected() {
		s.Client.Disconnect(250)
	}
}

func (s *MQTTNotificationSink) Name() string { return "mqtt" }

// Deliver publishes the job payload and waits for the broker ack
func (s *MQTTNotificationSink) Deliver(ctx context.Context, job NotificationJob) error {
	topic, retained, err := mqttTopicFor(job)
	if err != nil {
		return err
	}

	if !s.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}

	data, err := json.Marshal(job.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	token := s.Client.Publish(topic, s.qos, retained && s.retained, data)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return fmt.Errorf("publish %s: %w", topic, ctx.Err())
	}
}
