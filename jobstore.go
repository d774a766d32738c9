/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * Job registry and state machine
 */

package main

import (
	"context"
	"sync"
	"time"
)

// JobState represents the IPP "job-state" enum
type JobState int

// Job states, RFC 8011
const (
	JobPending           JobState = 3
	JobPendingHeld       JobState = 4
	JobProcessing        JobState = 5
	JobProcessingStopped JobState = 6
	JobCancelled         JobState = 7
	JobAborted           JobState = 8
	JobCompleted         JobState = 9
)

// String returns the job state keyword
func (s JobState) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobPendingHeld:
		return "pending-held"
	case JobProcessing:
		return "processing"
	case JobProcessingStopped:
		return "processing-stopped"
	case JobCancelled:
		return "canceled"
	case JobAborted:
		return "aborted"
	case JobCompleted:
		return "completed"
	}

	return "unknown"
}

// Terminal reports whether the state is final. Terminal jobs
// never change state again
func (s JobState) Terminal() bool {
	return s == JobCancelled || s == JobAborted || s == JobCompleted
}

// Job represents a single print job. Document bytes are owned
// by the store and must be treated as immutable once the job
// has been finalized
type Job struct {
	ID          int       // Sequential job id, never reused
	Name        string    // "job-name" as submitted
	User        string    // Submitting user
	Format      string    // Document MIME type
	State       JobState  // Current state
	Data        []byte    // Accumulated document bytes
	Path        string    // Saved artifact path, "" until saved
	CreatedAt   time.Time // Submission time
	CompletedAt time.Time // Zero until the job reaches a terminal state
}

// DocumentSink consumes the document of a finalized job and
// returns the path of the stored artifact
type DocumentSink interface {
	Consume(job *Job) (path string, err error)
}

// JobStore is the registry of submitted jobs. A single mutex
// guards all mutations; per the expected throughput of a
// virtual printer this is not a bottleneck
type JobStore struct {
	lock      sync.Mutex
	sink      DocumentSink
	retention time.Duration
	nextID    int
	jobs      map[int]*Job
	order     []int // Job ids in submission order
}

// NewJobStore creates a new JobStore. Finished jobs are dropped
// from the registry once they are older than the retention window
func NewJobStore(sink DocumentSink, retention time.Duration) *JobStore {
	return &JobStore{
		sink:      sink,
		retention: retention,
		nextID:    1,
		jobs:      make(map[int]*Job),
	}
}

// Create registers a new job in the "pending" state and
// returns its snapshot
func (js *JobStore) Create(name, user, format string) Job {
	js.lock.Lock()
	defer js.lock.Unlock()

	job := &Job{
		ID:        js.nextID,
		Name:      name,
		User:      user,
		Format:    format,
		State:     JobPending,
		CreatedAt: time.Now(),
	}

	js.nextID++
	js.jobs[job.ID] = job
	js.order = append(js.order, job.ID)

	return *job
}

// Append adds document bytes to the job
func (js *JobStore) Append(id int, data []byte) error {
	js.lock.Lock()
	defer js.lock.Unlock()

	job, ok := js.jobs[id]
	if !ok {
		return ErrUnknownJob
	}

	if job.State != JobPending && job.State != JobProcessing {
		return ErrInvalidState
	}

	job.Data = append(job.Data, data...)
	return nil
}

// Finalize moves the job from "pending" through "processing" to
// "completed", synchronously invoking the document sink in
// between. If the job is cancelled while the sink runs, the
// cancellation wins: the state stays "canceled", but bytes
// already written by the sink are not rolled back
func (js *JobStore) Finalize(id int) error {
	js.lock.Lock()

	job, ok := js.jobs[id]
	if !ok {
		js.lock.Unlock()
		return ErrUnknownJob
	}

	if job.State != JobPending {
		js.lock.Unlock()
		return ErrInvalidState
	}

	job.State = JobProcessing
	snapshot := *job
	js.lock.Unlock()

	// The sink gets a snapshot, so a concurrent Append cannot
	// race with its reads. Document bytes are complete at this
	// point anyway
	path, err := js.sink.Consume(&snapshot)

	js.lock.Lock()
	defer js.lock.Unlock()

	job.Path = path

	switch {
	case err != nil:
		job.State = JobAborted
		job.CompletedAt = time.Now()
		return err

	case job.State == JobProcessing:
		job.State = JobCompleted
		job.CompletedAt = time.Now()
	}

	return nil
}

// Cancel cancels a job. Only "pending" and "processing" jobs
// can be cancelled
func (js *JobStore) Cancel(id int) error {
	js.lock.Lock()
	defer js.lock.Unlock()

	job, ok := js.jobs[id]
	if !ok {
		return ErrUnknownJob
	}

	if job.State.Terminal() {
		return ErrInvalidState
	}

	job.State = JobCancelled
	job.CompletedAt = time.Now()

	return nil
}

// Get returns a snapshot of the job
func (js *JobStore) Get(id int) (Job, error) {
	js.lock.Lock()
	defer js.lock.Unlock()

	job, ok := js.jobs[id]
	if !ok {
		return Job{}, ErrUnknownJob
	}

	return *job, nil
}

// Jobs returns snapshots of all known jobs, in submission order
func (js *JobStore) Jobs() []Job {
	js.lock.Lock()
	defer js.lock.Unlock()

	jobs := make([]Job, 0, len(js.order))
	for _, id := range js.order {
		if job, ok := js.jobs[id]; ok {
			jobs = append(jobs, *job)
		}
	}

	return jobs
}

// ActiveCount returns the count of jobs not yet in a terminal state
func (js *JobStore) ActiveCount() int {
	js.lock.Lock()
	defer js.lock.Unlock()

	count := 0
	for _, id := range js.order {
		if job, ok := js.jobs[id]; ok && !job.State.Terminal() {
			count++
		}
	}

	return count
}

// RunSweeper periodically expires finished jobs until the
// context is cancelled
func (js *JobStore) RunSweeper(ctx context.Context) error {
	period := js.retention / 4
	if period < time.Second {
		period = time.Second
	}
	if period > time.Minute {
		period = time.Minute
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			js.sweep(now)
		}
	}
}

// sweep drops terminal jobs older than the retention window.
// Job ids are never reused, so the id sequence stays monotonic
// across sweeps
func (js *JobStore) sweep(now time.Time) {
	js.lock.Lock()
	defer js.lock.Unlock()

	kept := js.order[:0]
	for _, id := range js.order {
		job := js.jobs[id]

		if job.State.Terminal() && now.Sub(job.CompletedAt) > js.retention {
			Log.Debug("JOB %d: expired, dropped from the registry", id)
			delete(js.jobs, id)
			continue
		}

		kept = append(kept, id)
	}

	js.order = kept
}
