/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * Job registry tests
 */

package main

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"
)

// memSink is a DocumentSink for tests. It remembers consumed
// documents and fails on demand
type memSink struct {
	lock sync.Mutex
	docs map[int][]byte
	err  error
}

func newMemSink() *memSink {
	return &memSink{docs: make(map[int][]byte)}
}

func (sink *memSink) Consume(job *Job) (string, error) {
	sink.lock.Lock()
	defer sink.lock.Unlock()

	if sink.err != nil {
		return "", sink.err
	}

	sink.docs[job.ID] = append([]byte(nil), job.Data...)
	return fmt.Sprintf("mem/job-%d", job.ID), nil
}

// blockSink parks in Consume until released, so a test can act
// while a job is in the "processing" state
type blockSink struct {
	entered chan struct{}
	release chan struct{}
}

func newBlockSink() *blockSink {
	return &blockSink{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (sink *blockSink) Consume(job *Job) (string, error) {
	close(sink.entered)
	<-sink.release
	return fmt.Sprintf("mem/job-%d", job.ID), nil
}

// TestJobLifecycle runs a job from submission to completion
func TestJobLifecycle(t *testing.T) {
	sink := newMemSink()
	store := NewJobStore(sink, time.Hour)

	job := store.Create("letter", "alice", "application/pdf")
	if job.ID != 1 {
		t.Errorf("first job id: expected 1, present %d", job.ID)
	}
	if job.State != JobPending {
		t.Errorf("fresh job state: expected %s, present %s",
			JobPending, job.State)
	}

	if err := store.Append(job.ID, []byte("hello ")); err != nil {
		t.Fatalf("append: %s", err)
	}
	if err := store.Append(job.ID, []byte("world")); err != nil {
		t.Fatalf("append: %s", err)
	}

	if err := store.Finalize(job.ID); err != nil {
		t.Fatalf("finalize: %s", err)
	}

	job, err := store.Get(job.ID)
	if err != nil {
		t.Fatalf("get: %s", err)
	}

	if job.State != JobCompleted {
		t.Errorf("final state: expected %s, present %s",
			JobCompleted, job.State)
	}
	if job.Path != "mem/job-1" {
		t.Errorf("artifact path: expected %q, present %q",
			"mem/job-1", job.Path)
	}
	if job.CompletedAt.IsZero() {
		t.Errorf("completion time not set")
	}
	if string(sink.docs[1]) != "hello world" {
		t.Errorf("document damaged: %q", sink.docs[1])
	}
}

// TestJobStateErrors checks the rejected transitions
func TestJobStateErrors(t *testing.T) {
	store := NewJobStore(newMemSink(), time.Hour)

	if err := store.Append(99, []byte("x")); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("append to unknown job: expected %q, present %v",
			ErrUnknownJob, err)
	}

	if _, err := store.Get(99); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("get of unknown job: expected %q, present %v",
			ErrUnknownJob, err)
	}

	if err := store.Cancel(99); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("cancel of unknown job: expected %q, present %v",
			ErrUnknownJob, err)
	}

	job := store.Create("j", "u", "application/pdf")
	store.Append(job.ID, []byte("data"))
	store.Finalize(job.ID)

	if err := store.Finalize(job.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("double finalize: expected %q, present %v",
			ErrInvalidState, err)
	}

	if err := store.Cancel(job.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("cancel of completed job: expected %q, present %v",
			ErrInvalidState, err)
	}

	if err := store.Append(job.ID, []byte("x")); !errors.Is(err, ErrInvalidState) {
		t.Errorf("append to completed job: expected %q, present %v",
			ErrInvalidState, err)
	}
}

// TestJobSinkFailure checks that a failing sink aborts the job
func TestJobSinkFailure(t *testing.T) {
	sink := newMemSink()
	sink.err = errors.New("disk on fire")

	store := NewJobStore(sink, time.Hour)
	job := store.Create("j", "u", "application/pdf")
	store.Append(job.ID, []byte("data"))

	if err := store.Finalize(job.ID); err == nil {
		t.Fatalf("finalize with failing sink: error expected")
	}

	job, _ = store.Get(job.ID)
	if job.State != JobAborted {
		t.Errorf("state after sink failure: expected %s, present %s",
			JobAborted, job.State)
	}
}

// TestJobConcurrentCreate submits jobs from many goroutines and
// checks that ids come out dense and unique
func TestJobConcurrentCreate(t *testing.T) {
	const count = 50

	store := NewJobStore(newMemSink(), time.Hour)

	ids := make(chan int, count)

	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- store.Create("j", "u", "application/pdf").ID
		}()
	}
	wg.Wait()
	close(ids)

	var got []int
	for id := range ids {
		got = append(got, id)
	}
	sort.Ints(got)

	for i, id := range got {
		if id != i+1 {
			t.Fatalf("job ids not dense: %v", got)
		}
	}
}

// TestJobCancelDuringProcessing cancels a job while the sink is
// busy with it. The cancellation must win
func TestJobCancelDuringProcessing(t *testing.T) {
	sink := newBlockSink()
	store := NewJobStore(sink, time.Hour)

	job := store.Create("j", "u", "application/pdf")
	store.Append(job.ID, []byte("data"))

	done := make(chan error)
	go func() {
		done <- store.Finalize(job.ID)
	}()

	<-sink.entered

	if err := store.Cancel(job.ID); err != nil {
		t.Fatalf("cancel of processing job: %s", err)
	}

	close(sink.release)
	if err := <-done; err != nil {
		t.Fatalf("finalize: %s", err)
	}

	job, _ = store.Get(job.ID)
	if job.State != JobCancelled {
		t.Errorf("state: expected %s, present %s", JobCancelled, job.State)
	}
	if job.Path == "" {
		t.Errorf("artifact path lost")
	}
}

// TestJobSweep checks expiry of finished jobs
func TestJobSweep(t *testing.T) {
	store := NewJobStore(newMemSink(), time.Hour)

	finished := store.Create("old", "u", "application/pdf")
	store.Append(finished.ID, []byte("data"))
	store.Finalize(finished.ID)

	pending := store.Create("young", "u", "application/pdf")

	store.sweep(time.Now().Add(2 * time.Hour))

	if _, err := store.Get(finished.ID); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("expired job still known: %v", err)
	}

	if _, err := store.Get(pending.ID); err != nil {
		t.Errorf("pending job expired: %s", err)
	}

	if next := store.Create("next", "u", "application/pdf"); next.ID != 3 {
		t.Errorf("job id reused after sweep: expected 3, present %d", next.ID)
	}
}
