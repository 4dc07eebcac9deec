package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/boletoscan/internal/match"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h := ContentHashHex([]byte{}); h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewJob(t *testing.T) {
	data := []byte("%PDF-1.4 boleto")
	job := NewJob("boleto.pdf", data)

	if job.ID == "" {
		t.Error("expected a job id")
	}
	if other := NewJob("boleto.pdf", data); other.ID == job.ID {
		t.Error("expected unique job ids")
	}
	if job.ContentHash != ContentHashHex(data) {
		t.Errorf("expected content hash of data, got %q", job.ContentHash)
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if string(job.FileData()) != string(data) {
		t.Errorf("expected file data %q, got %q", data, job.FileData())
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("a.pdf", []byte("a"))

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusExtracting, "extracting"},
		{StatusMatching, "matching"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_SetReportReleasesData(t *testing.T) {
	job := NewJob("a.pdf", []byte("abc"))
	job.SetReport(Report{Filename: "a.pdf", Match: match.Failed()})

	if job.FileData() != nil {
		t.Error("expected file data to be released")
	}
	snap := job.Snapshot()
	if snap.Report == nil || snap.Report.Filename != "a.pdf" {
		t.Fatalf("expected report in snapshot, got %+v", snap.Report)
	}
}

func TestJob_SnapshotErrors(t *testing.T) {
	job := NewJob("a.pdf", nil)
	if snap := job.Snapshot(); snap.Errors == nil || len(snap.Errors) != 0 {
		t.Errorf("expected empty non-nil errors, got %v", snap.Errors)
	}

	job.AddError("first")
	job.AddError("second")
	snap := job.Snapshot()
	if len(snap.Errors) != 2 || snap.Errors[0] != "first" {
		t.Errorf("expected [first second], got %v", snap.Errors)
	}

	snap.Errors[0] = "mutated"
	if job.Snapshot().Errors[0] != "first" {
		t.Error("expected snapshot errors to be a copy")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("a.pdf", []byte("a"))
	store.Put(job)

	if got := store.Get(job.ID); got != job {
		t.Fatalf("expected to get job back, got %v", got)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_FindByHash(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("a.pdf", []byte("same bytes"))
	store.Put(job)

	if got := store.FindByHash(ContentHashHex([]byte("same bytes"))); got != job {
		t.Errorf("expected job by hash, got %v", got)
	}
	if store.FindByHash(ContentHashHex([]byte("other"))) != nil {
		t.Error("expected no job for unknown hash")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := NewJob("old.pdf", []byte("old"))
	store.Put(expired)

	time.Sleep(100 * time.Millisecond)

	fresh := NewJob("new.pdf", []byte("new"))
	store.Put(fresh)

	store.Cleanup()

	if store.Get(expired.ID) != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.FindByHash(expired.ContentHash) != nil {
		t.Error("expected expired hash index to be cleaned up")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	NewJobStore(time.Hour).Cleanup()
}
