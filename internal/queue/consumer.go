package queue

// This file contains the background consumer that listens to the
// enrollment.confirmed queue and writes structured lines to
// logs/enrollment.log.  It is the "analytics side read": losing it never
// affects the primary enrollment flow.

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartEnrollmentConsumer connects to RabbitMQ, declares the
// enrollment.confirmed queue (durable), and starts consuming messages.
// Each message is appended to logs/enrollment.log in a single-line,
// human-friendly format.  The function runs a reconnect loop with
// exponential backoff and keeps running indefinitely, logging any
// processing errors while rejecting the offending message so the server
// continues operating.
func StartEnrollmentConsumer() error {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("enrollment-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("enrollment-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("enrollment-consumer: set QoS failed: %v", err)
	}

	_, err = ch.QueueDeclare(enrollmentQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(enrollmentQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Printf("enrollment-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
	var ev EnrollmentConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	// Ensure logs directory exists
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "enrollment.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] Enrollment confirmed | enrollment_id=%d | user_id=%d | class_id=%d | class=\"%s\" | code=%s | room=\"%s\" | starts_at=%s | amount=%d cents\n",
		ev.ConfirmedAt, ev.EnrollmentID, ev.UserID, ev.ClassID, ev.ClassTitle, ev.EntryCode, ev.Room, ev.StartsAt, ev.AmountCents)

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
