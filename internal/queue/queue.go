package queue

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// DispatchQueue is where launch/resume triggers land for the external
// dispatch worker.
const DispatchQueue = "campaign_dispatch"

const (
	ReasonLaunch = "launch"
	ReasonResume = "resume"
)

// DispatchSignal tells the dispatch worker to (re)start walking a
// campaign's pending messages. SignalID lets the worker log and dedupe
// redelivered triggers.
type DispatchSignal struct {
	SignalID   string `json:"signal_id"`
	CampaignID int    `json:"campaign_id"`
	Reason     string `json:"reason"`
}

// Dispatcher is the fire-and-forget signaling boundary. The core never
// waits for or tracks the worker's progress; it only reads back the
// statuses the worker writes.
type Dispatcher interface {
	Signal(campaignID int, reason string) error
}

// ====================== AMQP dispatcher ======================

type AMQPDispatcher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPDispatcher(url string) (*AMQPDispatcher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	_, err = ch.QueueDeclare(
		DispatchQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPDispatcher{conn: conn, ch: ch}, nil
}

func (d *AMQPDispatcher) Signal(campaignID int, reason string) error {
	sig := DispatchSignal{
		SignalID:   uuid.NewString(),
		CampaignID: campaignID,
		Reason:     reason,
	}
	body, err := json.Marshal(sig)
	if err != nil {
		return err
	}

	err = d.ch.Publish(
		"",
		DispatchQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return err
	}

	log.Printf("📨 Dispatch signal %s (%s) for campaign %d\n", sig.SignalID, reason, campaignID)
	return nil
}

func (d *AMQPDispatcher) Close() {
	d.ch.Close()
	d.conn.Close()
}

// ====================== In-memory dispatcher ======================

// InMemoryDispatcher delivers signals to in-process subscribers. Used in
// tests and when no broker is reachable locally.
type InMemoryDispatcher struct {
	mu       sync.Mutex
	handlers []func(DispatchSignal)
	signals  []DispatchSignal
}

func NewInMemoryDispatcher() *InMemoryDispatcher {
	return &InMemoryDispatcher{}
}

func (d *InMemoryDispatcher) Subscribe(handler func(DispatchSignal)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, handler)
}

func (d *InMemoryDispatcher) Signal(campaignID int, reason string) error {
	sig := DispatchSignal{
		SignalID:   uuid.NewString(),
		CampaignID: campaignID,
		Reason:     reason,
	}

	d.mu.Lock()
	d.signals = append(d.signals, sig)
	handlers := make([]func(DispatchSignal), len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.Unlock()

	for _, handler := range handlers {
		go handler(sig)
	}
	return nil
}

// Signals returns everything published so far (test helper).
func (d *InMemoryDispatcher) Signals() []DispatchSignal {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]DispatchSignal, len(d.signals))
	copy(out, d.signals)
	return out
}
