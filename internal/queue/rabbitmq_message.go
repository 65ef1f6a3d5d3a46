package queue

import (
	"errors"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrAlreadySettled is returned when a message is acked or nacked twice
var ErrAlreadySettled = errors.New("message already settled")

// Message is a decoded gift job plus what is needed to settle its delivery.
// A message settles exactly once.
type Message struct {
	Job         *Job
	DeliveryTag uint64
	Redelivered bool
	acker       amqp.Acknowledger
	settled     atomic.Bool
}

// NewMessage binds job to a delivery tag on acker (a *amqp.Channel in
// production)
func NewMessage(job *Job, tag uint64, redelivered bool, acker amqp.Acknowledger) *Message {
	return &Message{Job: job, DeliveryTag: tag, Redelivered: redelivered, acker: acker}
}

// Ack acknowledges the message
func (m *Message) Ack() error {
	if !m.settled.CompareAndSwap(false, true) {
		return ErrAlreadySettled
	}
	return m.acker.Ack(m.DeliveryTag, false)
}

// Nack negatively acknowledges the message. Without requeue it is
// dead-lettered.
func (m *Message) Nack(requeue bool) error {
	if !m.settled.CompareAndSwap(false, true) {
		return ErrAlreadySettled
	}
	return m.acker.Nack(m.DeliveryTag, false, requeue)
}

// GetJob returns the decoded job
func (m *Message) GetJob() *Job {
	return m.Job
}

// Age is how long the job waited since it was enqueued
func (m *Message) Age(now time.Time) time.Duration {
	if m.Job == nil || m.Job.CreatedAt.IsZero() {
		return 0
	}
	return now.Sub(m.Job.CreatedAt)
}
