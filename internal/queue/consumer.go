package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Consumer listens on the stay queue and appends one line per event to
// <LogDir>/stays.log.
type Consumer struct {
	URL    string
	Queue  string
	LogDir string
	Logger *logrus.Logger
}

// Run connects to RabbitMQ, declares the queue (durable), and consumes
// until ctx is cancelled.  It runs a reconnect loop with exponential
// backoff; a message that cannot be processed is rejected without requeue
// so the loop keeps going.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Logger.WithError(err).WithField("retry_in", backoff.String()).Warn("stay-consumer: failed to dial broker")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Logger.WithError(err).Warn("stay-consumer: consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Logger.WithError(err).Warn("stay-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handleMessage(d.Body); err != nil {
				c.Logger.WithError(err).WithField("message_id", d.MessageId).Error("stay-consumer: handle message failed")
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleMessage(body []byte) error {
	var ev StayEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line, err := formatLine(ev)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(c.LogDir, "stays.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(ev StayEvent) (string, error) {
	var verb string
	switch ev.Type {
	case EventCheckedIn:
		verb = "Checked in"
	case EventCheckedOut:
		verb = "Checked out"
	default:
		return "", fmt.Errorf("unknown event type %q", ev.Type)
	}
	ids := make([]string, len(ev.StaffIDs))
	for i, id := range ev.StaffIDs {
		ids[i] = fmt.Sprint(id)
	}
	line := fmt.Sprintf("[%s] %s | reservation_id=%d | hotel_id=%d | room=%d | customer_id=%d | staff=[%s]",
		ev.OccurredAt, verb, ev.ReservationID, ev.HotelID, ev.RoomNumber, ev.CustomerID, strings.Join(ids, ","))
	if ev.Type == EventCheckedOut {
		line += fmt.Sprintf(" | charge=%d cents", ev.ChargeCents)
	}
	return line + "\n", nil
}
