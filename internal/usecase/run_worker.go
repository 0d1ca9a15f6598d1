package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"QuantEase/internal/domain/models"
	domsvc "QuantEase/internal/domain/service"
	svccache "QuantEase/internal/service/cache"
	"QuantEase/pkg/logger"
	"QuantEase/pkg/queue"
)

// RunJobType is the queue message type for asynchronous strategy runs.
const RunJobType = "strategy_run"

const jobStateTTL = 24 * time.Hour

// RunJobPayload is the queued form of an async run.
type RunJobPayload struct {
	JobID  string           `json:"job_id"`
	Params models.RunParams `json:"params"`
}

// JobTracker stores async job states so pollers can observe progress. State
// lives in the shared cache under the job ID.
type JobTracker struct {
	cache svccache.BytesCache
}

func NewJobTracker(cache svccache.BytesCache) *JobTracker {
	return &JobTracker{cache: cache}
}

func (t *JobTracker) set(jobID string, resp *models.JobResponse) {
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	_ = t.cache.SetBytes("job:"+jobID, b, jobStateTTL)
}

// Create marks a job queued.
func (t *JobTracker) Create(jobID string) {
	t.set(jobID, &models.JobResponse{JobID: jobID, Status: models.JobStatusQueued})
}

// Running marks a job picked up by a worker.
func (t *JobTracker) Running(jobID string) {
	t.set(jobID, &models.JobResponse{JobID: jobID, Status: models.JobStatusRunning})
}

// Complete records a finished job with its result.
func (t *JobTracker) Complete(jobID string, result *models.RunResponse) {
	t.set(jobID, &models.JobResponse{JobID: jobID, Status: models.JobStatusDone, Result: result})
}

// Fail records a failed job with its error message.
func (t *JobTracker) Fail(jobID string, err error) {
	t.set(jobID, &models.JobResponse{JobID: jobID, Status: models.JobStatusFailed, Error: err.Error()})
}

// Get returns the current job state.
func (t *JobTracker) Get(jobID string) (*models.JobResponse, bool) {
	b, ok, err := t.cache.GetBytes("job:" + jobID)
	if err != nil || !ok {
		return nil, false
	}
	var resp models.JobResponse
	if json.Unmarshal(b, &resp) != nil {
		return nil, false
	}
	return &resp, true
}

// RunJob executes queued strategy runs on the queue workers. Each message
// carries the validated parameters plus the job ID the submitter polls.
type RunJob struct {
	runner domsvc.StrategyRunner
	jobs   *JobTracker
	log    *logger.Logger
}

func NewRunJob(runner domsvc.StrategyRunner, jobs *JobTracker, log *logger.Logger) *RunJob {
	return &RunJob{runner: runner, jobs: jobs, log: log}
}

func (j *RunJob) Name() string { return "strategy-run" }
func (j *RunJob) Type() string { return RunJobType }

// Handle runs one queued strategy evaluation.
func (j *RunJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RunJobPayload](payload)
	if err != nil {
		return fmt.Errorf("run job payload: %w", err)
	}

	j.jobs.Running(p.JobID)
	j.log.Info("async run started",
		logger.String("job_id", p.JobID),
		logger.String("ticker", p.Params.Ticker))

	result, err := j.runner.Run(ctx, p.Params)
	if err != nil {
		j.jobs.Fail(p.JobID, err)
		// the failure is recorded for the poller; do not retry a
		// deterministic run
		return nil
	}

	j.jobs.Complete(p.JobID, result.ToResponse())
	return nil
}

var _ queue.Job = (*RunJob)(nil)
