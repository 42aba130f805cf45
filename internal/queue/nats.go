// Package queue wraps a NATS connection for the optional async plan-request
// path: a caller publishes a PlanRequest and a PlanWorker (internal/worker)
// consumes it, runs a planner.Session, and publishes completion.
package queue

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Manager wraps a NATS connection and tracks the cancellable context of
// each in-flight plan run, keyed by run ID: a run's own handler registers
// it via TrackRun, and a "plan.cancel.<runID>" message or the run's own
// completion releases it via CancelRun.
type Manager struct {
	conn    *nats.Conn
	url     string
	options []nats.Option

	runsMux sync.Mutex
	runs    map[string]context.CancelFunc
}

// NewManager creates a new NATS manager.
func NewManager(natsURL string) (*Manager, error) {
	options := []nats.Option{
		nats.Name("Clinker Network Planner"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Printf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Println("NATS connection closed")
		}),
	}

	conn, err := nats.Connect(natsURL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Printf("Connected to NATS at %s", natsURL)

	return &Manager{
		conn:    conn,
		url:     natsURL,
		options: options,
		runs:    make(map[string]context.CancelFunc),
	}, nil
}

// Close closes the NATS connection.
func (m *Manager) Close() {
	if m.conn != nil {
		m.conn.Close()
	}
}

// Conn returns the NATS connection.
func (m *Manager) Conn() *nats.Conn {
	return m.conn
}

// Publish publishes a message to a subject.
func (m *Manager) Publish(subject string, data []byte) error {
	return m.conn.Publish(subject, data)
}

// Subscribe subscribes to a subject with a handler.
func (m *Manager) Subscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error) {
	return m.conn.Subscribe(subject, handler)
}

// QueueSubscribe creates a queue subscriber (load balanced across workers).
func (m *Manager) QueueSubscribe(subject, queue string, handler nats.MsgHandler) (*nats.Subscription, error) {
	return m.conn.QueueSubscribe(subject, queue, handler)
}

// TrackRun registers runID as in-flight and returns a context that CancelRun
// cancels, either in response to a "plan.cancel.<runID>" message or once the
// run's own handler releases it on completion.
func (m *Manager) TrackRun(runID string) context.Context {
	m.runsMux.Lock()
	defer m.runsMux.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	m.runs[runID] = cancel
	return ctx
}

// CancelRun cancels runID's tracked context, if any, and stops tracking it.
// Safe to call on a run that was never tracked or already released.
func (m *Manager) CancelRun(runID string) {
	m.runsMux.Lock()
	defer m.runsMux.Unlock()

	if cancel, ok := m.runs[runID]; ok {
		cancel()
		delete(m.runs, runID)
	}
}

// ParseCancelSubject extracts the run ID from a "plan.cancel.<runID>"
// subject. ok is false if subject doesn't carry the expected prefix.
func ParseCancelSubject(subject string) (runID string, ok bool) {
	if !strings.HasPrefix(subject, "plan.cancel.") {
		return "", false
	}
	return strings.TrimPrefix(subject, "plan.cancel."), true
}

// NATS subject patterns

const (
	// SubjectPlanRequest carries a PlanRequest; every PlanWorker subscribes
	// under QueueGroupPlanners so NATS load-balances requests across them.
	SubjectPlanRequest = "plan.request"

	// SubjectPlanCompleteFmt is the completion-subject format string:
	// plan.complete.{runID}.
	SubjectPlanCompleteFmt = "plan.complete.%s"
	// SubjectPlanCancelFmt is the cancellation-subject format string:
	// plan.cancel.{runID}.
	SubjectPlanCancelFmt = "plan.cancel.%s"
	// SubjectPlanCancelWildcard subscribes to every run's cancellation
	// subject; handlers recover the run ID with ParseCancelSubject.
	SubjectPlanCancelWildcard = "plan.cancel.*"

	QueueGroupPlanners = "plan-workers"
)

// GetPlanCompleteSubject returns the completion subject for a run.
func GetPlanCompleteSubject(runID string) string {
	return fmt.Sprintf(SubjectPlanCompleteFmt, runID)
}

// GetPlanCancelSubject returns the cancellation subject for a run.
func GetPlanCancelSubject(runID string) string {
	return fmt.Sprintf(SubjectPlanCancelFmt, runID)
}
