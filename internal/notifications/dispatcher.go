// Package notifications sends push notifications through Firebase Cloud
// Messaging: single-device, topic, and batched multicast delivery.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"firebase.google.com/go/v4/messaging"

	"github.com/taskflowhq/taskflow-api/internal/apperr"
)

// batchSize is the FCM multicast hard limit per call.
const batchSize = 500

// defaultSendTimeout bounds a single gateway call when no timeout is
// configured, so a stalled send cannot occupy a request thread forever.
const defaultSendTimeout = 10 * time.Second

// Gateway is the outbound messaging surface. *messaging.Client satisfies it;
// tests substitute a fake.
type Gateway interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// BulkResult aggregates multicast outcomes across batches. Per-token failure
// detail is deliberately not kept — counts only.
type BulkResult struct {
	SuccessCount int `json:"successCount"`
	FailureCount int `json:"failureCount"`
}

// Dispatcher sends notifications through a Gateway with a bounded per-call
// timeout. Nil-gateway dispatchers report DeliveryError on every send, which
// keeps the API surface up when FCM credentials are absent.
type Dispatcher struct {
	gw      Gateway
	timeout time.Duration
	log     *slog.Logger
}

// New creates a Dispatcher. gw may be nil when FCM is not configured.
func New(gw Gateway, timeout time.Duration, log *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Dispatcher{gw: gw, timeout: timeout, log: log}
}

// SendToUser sends a notification to a single device token and returns the
// gateway message id.
func (d *Dispatcher) SendToUser(ctx context.Context, token, title, body string, data map[string]string) (string, error) {
	if token == "" {
		return "", apperr.New(apperr.Validation, "device token is required")
	}
	if d.gw == nil {
		return "", apperr.New(apperr.Delivery, "notification gateway not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	id, err := d.gw.Send(ctx, &messaging.Message{
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
		Token:        token,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.Delivery, "send notification", err)
	}
	d.log.Info("notification sent", "message_id", id)
	return id, nil
}

// SendToTopic sends a notification to all subscribers of a topic.
func (d *Dispatcher) SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) (string, error) {
	if topic == "" {
		return "", apperr.New(apperr.Validation, "topic is required")
	}
	if d.gw == nil {
		return "", apperr.New(apperr.Delivery, "notification gateway not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	id, err := d.gw.Send(ctx, &messaging.Message{
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
		Topic:        topic,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.Delivery, "send notification to topic", err)
	}
	d.log.Info("topic notification sent", "topic", topic, "message_id", id)
	return id, nil
}

// SendBulk multicasts to tokens in batches of 500. Batches are attempted
// independently: one failed batch counts its tokens as failures and the rest
// still go out. successCount + failureCount always equals len(tokens).
func (d *Dispatcher) SendBulk(ctx context.Context, tokens []string, title, body string, data map[string]string) (BulkResult, error) {
	if len(tokens) == 0 {
		return BulkResult{}, apperr.New(apperr.Validation, "tokens are required")
	}
	if d.gw == nil {
		return BulkResult{}, apperr.New(apperr.Delivery, "notification gateway not initialized")
	}

	var result BulkResult
	for start := 0; start < len(tokens); start += batchSize {
		end := start + batchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		resp, err := d.sendBatch(ctx, batch, title, body, data)
		if err != nil {
			d.log.Warn("bulk batch failed", "batch_start", start, "tokens", len(batch), "error", err)
			result.FailureCount += len(batch)
			continue
		}
		result.SuccessCount += resp.SuccessCount
		result.FailureCount += resp.FailureCount
	}

	d.log.Info("bulk send complete",
		"tokens", len(tokens), "success", result.SuccessCount, "failure", result.FailureCount)
	return result, nil
}

func (d *Dispatcher) sendBatch(ctx context.Context, tokens []string, title, body string, data map[string]string) (*messaging.BatchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	return d.gw.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
		Tokens:       tokens,
	})
}

// SendTaskAssignment composes the fixed task-assignment message and delegates
// to SendToUser. dueDate is optional; empty omits the due suffix.
func (d *Dispatcher) SendTaskAssignment(ctx context.Context, token, taskTitle, projectName, dueDate string) (string, error) {
	body := fmt.Sprintf("You have been assigned a new task: %s in %s", taskTitle, projectName)
	if dueDate != "" {
		body += fmt.Sprintf(" (Due: %s)", dueDate)
	}

	data := map[string]string{
		"type":         "task_assignment",
		"task_title":   taskTitle,
		"project_name": projectName,
	}
	if dueDate != "" {
		data["due_date"] = dueDate
	}

	return d.SendToUser(ctx, token, "New Task Assigned", body, data)
}
