package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lmercier/dcawatch/pkg/logger"
)

type stubJob struct {
	name     string
	schedule string
	err      error
	runs     int
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return j.schedule }
func (j *stubJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func newTestScheduler() *Scheduler {
	s := New(logger.NewNop())
	s.retryDelay = time.Millisecond
	return s
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "pass", schedule: "0 10 22 * * *"}

	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}
	if err := s.AddJob(job); err == nil {
		t.Error("expected error for duplicate job name")
	}
	if err := s.AddJob(&stubJob{name: "bad", schedule: "not a schedule"}); err == nil {
		t.Error("expected error for invalid schedule")
	}

	jobs := s.Jobs()
	if len(jobs) != 1 || jobs[0] != "pass" {
		t.Errorf("jobs = %v, want [pass]", jobs)
	}
}

func TestRunJobRecordsHistory(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "pass", schedule: "0 10 22 * * *"}
	if err := s.AddJob(job); err != nil {
		t.Fatal(err)
	}

	s.runJob(job)

	h, err := s.History("pass")
	if err != nil {
		t.Fatal(err)
	}
	last := h.LastResult()
	if last == nil || !last.Success {
		t.Fatalf("last result = %+v, want success", last)
	}
	if job.runs != 1 {
		t.Errorf("job ran %d times, want 1", job.runs)
	}
}

func TestRunJobRetriesOnFailure(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{name: "flaky", schedule: "0 10 22 * * *", err: errors.New("boom")}
	if err := s.AddJob(job); err != nil {
		t.Fatal(err)
	}

	s.runJob(job)

	if want := s.maxRetries + 1; job.runs != want {
		t.Errorf("job ran %d times, want %d", job.runs, want)
	}

	h, _ := s.History("flaky")
	last := h.LastResult()
	if last == nil || last.Success {
		t.Fatalf("last result = %+v, want failure", last)
	}
	if last.Error == "" {
		t.Error("failure should record the error text")
	}
}

func TestRunJobSkipIsNotRetried(t *testing.T) {
	s := newTestScheduler()
	job := &stubJob{
		name:     "busy",
		schedule: "0 10 22 * * *",
		err:      fmt.Errorf("%w: previous run still active", ErrSkipped),
	}
	if err := s.AddJob(job); err != nil {
		t.Fatal(err)
	}

	s.runJob(job)

	if job.runs != 1 {
		t.Errorf("skipped job ran %d times, want 1", job.runs)
	}
	h, _ := s.History("busy")
	if last := h.LastResult(); last == nil || !last.Success {
		t.Errorf("skip recorded as %+v, want success", last)
	}
}

func TestJobHistoryLimit(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(JobResult{JobName: "x", Success: true})
	}
	if len(h.Results) != historyLimit {
		t.Errorf("history kept %d results, want %d", len(h.Results), historyLimit)
	}
	if h.SuccessRate() != 1.0 {
		t.Errorf("success rate = %v, want 1.0", h.SuccessRate())
	}
}
