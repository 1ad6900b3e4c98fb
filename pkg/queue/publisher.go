package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/pkg/otellib"
)

// ExecutionJob is the body of a published execution
type ExecutionJob struct {
	ExecutionID    int64               `json:"executionId"`
	CampaignID     int64               `json:"campaignId"`
	ExecutionType  model.ExecutionType `json:"executionType"`
	TrackingCode   string              `json:"trackingCode"`
	RecipientEmail string              `json:"recipientEmail,omitempty"`
	RecipientPhone string              `json:"recipientPhone,omitempty"`
	UserID         *int64              `json:"userId,omitempty"`
	DeviceToken    string              `json:"deviceToken,omitempty"`
	Subject        string              `json:"subject,omitempty"`
	Content        string              `json:"content,omitempty"`
	RetryCount     int                 `json:"retryCount"`
}

// Publisher publishes executions to a topic exchange, one routing key per execution type
type Publisher struct {
	exchange string
	logger   *zap.Logger

	mut     sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher dials url and declares the durable topic exchange
func NewPublisher(url string, exchange string, logger *zap.Logger) (*Publisher, error) {
	if url == "" {
		return nil, errors.New("rabbitmq url cannot be empty")
	}
	if exchange == "" {
		return nil, errors.New("exchange name cannot be empty")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	logger.Info("Connected to RabbitMQ", zap.String("exchange", exchange))

	return &Publisher{
		exchange: exchange,
		logger:   logger,
		conn:     conn,
		channel:  channel,
	}, nil
}

// RoutingKey returns execution.<type>, e.g. execution.email
func RoutingKey(executionType model.ExecutionType) string {
	return "execution." + strings.ToLower(string(executionType))
}

func newPublishing(e model.Execution, messageID string, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(ExecutionJob{
		ExecutionID:    e.ID,
		CampaignID:     e.CampaignID,
		ExecutionType:  e.ExecutionType,
		TrackingCode:   e.TrackingCode,
		RecipientEmail: e.RecipientEmail,
		RecipientPhone: e.RecipientPhone,
		UserID:         e.UserID,
		DeviceToken:    e.RecipientDeviceToken,
		Subject:        e.Subject,
		Content:        e.Content,
		RetryCount:     e.RetryCount,
	})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal execution job: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    now,
		Type:         string(e.ExecutionType),
		Body:         body,
	}, nil
}

// Dispatch publishes the execution and returns the message id as the external message id
func (p *Publisher) Dispatch(ctx context.Context, e model.Execution) (string, error) {
	messageID := uuid.NewString()
	msg, err := newPublishing(e, messageID, time.Now().UTC())
	if err != nil {
		return "", err
	}

	p.mut.Lock()
	defer p.mut.Unlock()

	if p.channel == nil {
		return "", errors.New("publisher is closed")
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, RoutingKey(e.ExecutionType), false, false, msg)
	if err != nil {
		return "", fmt.Errorf("publish execution %d: %w", e.ID, err)
	}

	logger := p.logger
	if l, ok := otellib.ExtractOK(ctx); ok {
		logger = l
	}
	logger.Debug("Published execution",
		zap.Int64("execution_id", e.ID),
		zap.String("message_id", messageID),
	)
	return messageID, nil
}

// Close ...
func (p *Publisher) Close() error {
	p.mut.Lock()
	defer p.mut.Unlock()

	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
		p.channel = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
		p.conn = nil
	}
	return errors.Join(errs...)
}
