package repos

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nexusatelier/atelier-backend/internal/domain"
	"github.com/nexusatelier/atelier-backend/internal/platform/logger"
)

var memDBSeq int

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	memDBSeq++
	dsn := fmt.Sprintf("file:repos_%d?mode=memory&cache=shared", memDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Job{}, &domain.Asset{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testJobRepo(t *testing.T) JobRepo {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return NewJobRepo(testDB(t), log)
}

func createVideoJob(t *testing.T, r JobRepo, userID uuid.UUID) *domain.Job {
	t.Helper()
	job, err := r.Create(context.Background(), nil, userID, domain.JobTypeVideo,
		&domain.TextToVideoParams{Prompt: "a castle", DurationSeconds: 10}, nil, 0)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func TestCreateAndGet(t *testing.T) {
	r := testJobRepo(t)
	userID := uuid.New()
	job := createVideoJob(t, r, userID)

	if job.Status != domain.JobStatusQueued {
		t.Fatalf("status %s, want queued", job.Status)
	}
	if job.Priority != domain.DefaultPriority {
		t.Fatalf("priority %d, want default %d", job.Priority, domain.DefaultPriority)
	}
	if job.CreditsUsed != 40 {
		t.Fatalf("credits %d, want 40", job.CreditsUsed)
	}

	got, err := r.GetByID(context.Background(), nil, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.UserID != userID {
		t.Fatalf("fetched job does not match: %+v", got)
	}
	params, err := got.DecodedParams()
	if err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if params.(*domain.TextToVideoParams).Prompt != "a castle" {
		t.Fatalf("params did not round-trip")
	}

	missing, err := r.GetByID(context.Background(), nil, uuid.New())
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for a missing id")
	}
}

func TestStatusTransitionGuards(t *testing.T) {
	r := testJobRepo(t)
	job := createVideoJob(t, r, uuid.New())
	ctx := context.Background()

	ok, err := r.MarkProcessing(ctx, nil, job.ID)
	if err != nil || !ok {
		t.Fatalf("queued -> processing should land (ok=%v err=%v)", ok, err)
	}
	// A second claim races against the first and must lose.
	ok, _ = r.MarkProcessing(ctx, nil, job.ID)
	if ok {
		t.Fatalf("processing -> processing must be rejected")
	}

	result := &domain.JobResult{AssetID: uuid.New(), URL: "https://cdn.test/v.mp4", ModelUsed: "luma-dream-machine"}
	ok, err = r.SetResult(ctx, nil, job.ID, result)
	if err != nil || !ok {
		t.Fatalf("processing -> completed should land (ok=%v err=%v)", ok, err)
	}

	// Terminal means terminal: neither a re-claim nor another result.
	if ok, _ = r.MarkProcessing(ctx, nil, job.ID); ok {
		t.Fatalf("completed -> processing must be rejected")
	}
	if ok, _ = r.SetResult(ctx, nil, job.ID, result); ok {
		t.Fatalf("completed -> completed must be rejected")
	}
	if ok, _ = r.SetError(ctx, nil, job.ID, &domain.JobError{Code: "X", Message: "late"}); ok {
		t.Fatalf("completed -> failed must be rejected")
	}

	got, _ := r.GetByID(ctx, nil, job.ID)
	if got.Status != domain.JobStatusCompleted || got.ModelUsed != "luma-dream-machine" {
		t.Fatalf("unexpected final state %+v", got)
	}
	if got.StartedAt == nil || got.CompletedAt == nil {
		t.Fatalf("timestamps missing: started=%v completed=%v", got.StartedAt, got.CompletedAt)
	}
}

func TestRetryReentersProcessingFromFailed(t *testing.T) {
	r := testJobRepo(t)
	job := createVideoJob(t, r, uuid.New())
	ctx := context.Background()

	if ok, _ := r.MarkProcessing(ctx, nil, job.ID); !ok {
		t.Fatalf("first claim failed")
	}
	if ok, _ := r.SetError(ctx, nil, job.ID, &domain.JobError{Code: domain.ErrCodeGenerationFailed, Message: "boom", Retryable: true}); !ok {
		t.Fatalf("failure write failed")
	}

	// Retry re-entry clears the previous attempt's outcome.
	if ok, _ := r.MarkProcessing(ctx, nil, job.ID); !ok {
		t.Fatalf("failed -> processing (retry) should land")
	}
	got, _ := r.GetByID(ctx, nil, job.ID)
	if got.Status != domain.JobStatusProcessing {
		t.Fatalf("status %s, want processing", got.Status)
	}
	if len(got.Error) != 0 {
		t.Fatalf("previous error must be cleared on retry")
	}
	if got.CompletedAt != nil {
		t.Fatalf("completed_at must be cleared on retry")
	}
	if got.StartedAt == nil {
		t.Fatalf("started_at must survive the retry")
	}
}

func TestCancelGuards(t *testing.T) {
	r := testJobRepo(t)
	ctx := context.Background()

	queued := createVideoJob(t, r, uuid.New())
	got, err := r.Cancel(ctx, nil, queued.ID)
	if err != nil {
		t.Fatalf("cancel queued: %v", err)
	}
	if got.Status != domain.JobStatusCancelled {
		t.Fatalf("status %s, want cancelled", got.Status)
	}
	if _, err := r.Cancel(ctx, nil, queued.ID); err != ErrNotCancellable {
		t.Fatalf("cancelling twice: got %v, want ErrNotCancellable", err)
	}

	// A cancelled job is out of reach for the execution path.
	if ok, _ := r.MarkProcessing(ctx, nil, queued.ID); ok {
		t.Fatalf("cancelled -> processing must be rejected")
	}

	running := createVideoJob(t, r, uuid.New())
	r.MarkProcessing(ctx, nil, running.ID)
	if _, err := r.Cancel(ctx, nil, running.ID); err != nil {
		t.Fatalf("cancel processing: %v", err)
	}
	if ok, _ := r.SetResult(ctx, nil, running.ID, &domain.JobResult{AssetID: uuid.New(), URL: "u"}); ok {
		t.Fatalf("terminal write after cancel must be rejected")
	}
}

func TestListByUser(t *testing.T) {
	r := testJobRepo(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	a1 := createVideoJob(t, r, alice)
	createVideoJob(t, r, alice)
	createVideoJob(t, r, bob)
	r.MarkProcessing(ctx, nil, a1.ID)

	all, err := r.ListByUser(ctx, nil, alice, nil, 50, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("listed %d jobs for alice, want 2", len(all))
	}

	processing := domain.JobStatusProcessing
	filtered, err := r.ListByUser(ctx, nil, alice, &processing, 50, 0)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != a1.ID {
		t.Fatalf("status filter returned %d jobs", len(filtered))
	}
}

func TestQueueStatsWindow(t *testing.T) {
	r := testJobRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	queued := createVideoJob(t, r, userID)
	_ = queued
	running := createVideoJob(t, r, userID)
	r.MarkProcessing(ctx, nil, running.ID)
	done := createVideoJob(t, r, userID)
	r.MarkProcessing(ctx, nil, done.ID)
	r.SetResult(ctx, nil, done.ID, &domain.JobResult{AssetID: uuid.New(), URL: "u"})
	broken := createVideoJob(t, r, userID)
	r.MarkProcessing(ctx, nil, broken.ID)
	r.SetError(ctx, nil, broken.ID, &domain.JobError{Code: domain.ErrCodeGenerationFailed, Message: "boom"})

	audioJob, err := r.Create(ctx, nil, userID, domain.JobTypeAudio,
		&domain.AudioGenerationParams{AudioType: "voiceover", Prompt: "p"}, nil, 0)
	if err != nil {
		t.Fatalf("create audio job: %v", err)
	}
	_ = audioJob

	stats, err := r.QueueStats(ctx, nil, nil, 24*time.Hour)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := QueueStats{Queued: 2, Processing: 1, Completed: 1, Failed: 1}
	if stats != want {
		t.Fatalf("stats %+v, want %+v", stats, want)
	}

	video := domain.JobTypeVideo
	stats, err = r.QueueStats(ctx, nil, &video, 24*time.Hour)
	if err != nil {
		t.Fatalf("typed stats: %v", err)
	}
	want = QueueStats{Queued: 1, Processing: 1, Completed: 1, Failed: 1}
	if stats != want {
		t.Fatalf("video stats %+v, want %+v", stats, want)
	}
}
