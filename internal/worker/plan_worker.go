// Package worker consumes plan requests off the async queue, runs a planner
// session per request, persists the result, and publishes completion.
// Adapted from the toolbox's snapshot worker: one goroutine per inbound NATS
// message, cancellation tracked by the queue.Manager each request and
// cancel message both go through.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/pinggolf/clinker-planner/internal/config"
	"github.com/pinggolf/clinker-planner/internal/plan"
	"github.com/pinggolf/clinker-planner/internal/planner"
	"github.com/pinggolf/clinker-planner/internal/queue"
	"github.com/pinggolf/clinker-planner/internal/solve"
	"github.com/pinggolf/clinker-planner/internal/store"
	"github.com/pinggolf/clinker-planner/internal/tabular"
)

// PlanRequest is the message published to queue.SubjectPlanRequest.
type PlanRequest struct {
	RunID         string                              `json:"runId"`
	Tables        map[tabular.TableName]tabular.Table `json:"tables"`
	StrategicRows []tabular.StrategicConstraintRow    `json:"strategicRows,omitempty"`
}

// PlanComplete is published to queue.GetPlanCompleteSubject(runID) once a
// request finishes, successfully or not.
type PlanComplete struct {
	RunID  string     `json:"runId"`
	Status plan.Status `json:"status"`
	Error  string      `json:"error,omitempty"`
}

// PlanWorker runs planner.Session instances dispatched off the NATS queue.
type PlanWorker struct {
	nats     *queue.Manager
	store    *store.Store
	cfg      *config.Config
	throttle *Throttle
}

// NewPlanWorker creates a new PlanWorker.
func NewPlanWorker(nats *queue.Manager, st *store.Store, cfg *config.Config) *PlanWorker {
	return &PlanWorker{
		nats:     nats,
		store:    st,
		cfg:      cfg,
		throttle: NewThrottle(cfg.SolveDispatchRatePerS, cfg.MaxConcurrentSolves),
	}
}

// Start subscribes to plan requests and cancellation requests.
func (w *PlanWorker) Start() error {
	_, err := w.nats.QueueSubscribe(queue.SubjectPlanRequest, queue.QueueGroupPlanners, w.handlePlanRequest)
	if err != nil {
		return fmt.Errorf("subscribe to plan requests: %w", err)
	}

	_, err = w.nats.Subscribe(queue.SubjectPlanCancelWildcard, w.handleCancelRequest)
	if err != nil {
		return fmt.Errorf("subscribe to cancellation requests: %w", err)
	}

	log.Println("Plan worker started and listening for requests")
	return nil
}

func (w *PlanWorker) handleCancelRequest(msg *nats.Msg) {
	runID, ok := queue.ParseCancelSubject(msg.Subject)
	if !ok {
		log.Printf("invalid cancel subject: %s", msg.Subject)
		return
	}
	log.Printf("received cancellation request for run: %s", runID)
	w.nats.CancelRun(runID)
}

func (w *PlanWorker) handlePlanRequest(msg *nats.Msg) {
	var req PlanRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Printf("failed to parse plan request: %v", err)
		return
	}

	if err := w.throttle.Wait(context.Background()); err != nil {
		log.Printf("throttle wait for run %s: %v", req.RunID, err)
		return
	}

	ctx := w.nats.TrackRun(req.RunID)
	go func() {
		defer w.nats.CancelRun(req.RunID)

		if err := w.process(ctx, req); err != nil {
			log.Printf("plan run %s failed: %v", req.RunID, err)
			w.publishComplete(req.RunID, plan.StatusError, err)
		}
	}()
}

func (w *PlanWorker) process(ctx context.Context, req PlanRequest) error {
	session := planner.New(planner.Config{
		Solve: solve.Options{
			TimeLimit:   w.cfg.SolveTimeLimit,
			RelativeGap: w.cfg.SolveRelativeGap,
			Threads:     w.cfg.SolveThreads,
		},
		EnableFallback:    w.cfg.EnableFallback,
		EmergencyUnitCost: w.cfg.EmergencyUnitCost,
		RunChecks:         w.cfg.RunDiagnosticChecks,
	})

	result, err := session.Run(ctx, req.Tables, req.StrategicRows)
	if err != nil {
		return fmt.Errorf("run session: %w", err)
	}

	runID, err := uuid.Parse(req.RunID)
	if err != nil {
		runID = uuid.New()
	}

	if w.store != nil {
		if err := w.store.SaveRun(ctx, runID, *result, nil); err != nil {
			return fmt.Errorf("persist run: %w", err)
		}
	}

	w.publishComplete(req.RunID, result.Status, nil)
	return nil
}

func (w *PlanWorker) publishComplete(runID string, status plan.Status, err error) {
	complete := PlanComplete{RunID: runID, Status: status}
	if err != nil {
		complete.Error = err.Error()
	}
	data, marshalErr := json.Marshal(complete)
	if marshalErr != nil {
		log.Printf("failed to marshal completion for run %s: %v", runID, marshalErr)
		return
	}
	if pubErr := w.nats.Publish(queue.GetPlanCompleteSubject(runID), data); pubErr != nil {
		log.Printf("failed to publish completion for run %s: %v", runID, pubErr)
	}
}
