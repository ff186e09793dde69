package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/ytclone/internal/models"
	"github.com/desertthunder/ytclone/internal/shared"
	"github.com/desertthunder/ytclone/internal/tasks"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func createJob(t *testing.T, repo *CopyJobRepository, sourceID string) *models.CopyJob {
	t.Helper()

	job := models.NewCopyJob(0, sourceID, false, false)
	if err := repo.Create(job); err != nil {
		t.Fatalf("failed to create job: %v", err)
	}
	return job
}

func TestCopyJobRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCopyJobRepository(db)
		first := createJob(t, repo, "PLsrc")
		second := createJob(t, repo, "PLsrc")

		if first.ID() == "" {
			t.Error("expected generated ID")
		}
		if first.Sequence() != 1 || second.Sequence() != 2 {
			t.Errorf("expected sequences 1 and 2, got %d and %d", first.Sequence(), second.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCopyJobRepository(db)
		job := models.NewCopyJob(0, "PLsrc", true, true)
		if err := repo.Create(job); err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		got, err := repo.Get(job.ID())
		if err != nil {
			t.Fatalf("failed to get job: %v", err)
		}
		if got.SourceID() != "PLsrc" || !got.Grouped() || !got.DryRun() {
			t.Errorf("unexpected job %+v", got)
		}
		if got.Status() != models.JobRunning {
			t.Errorf("expected running, got %s", got.Status())
		}
		if got.FinishedAt() != nil {
			t.Error("expected no finish time")
		}

		bySeq, err := repo.GetBySequence(job.Sequence())
		if err != nil {
			t.Fatalf("failed to get job by sequence: %v", err)
		}
		if bySeq.ID() != job.ID() {
			t.Errorf("expected %s, got %s", job.ID(), bySeq.ID())
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCopyJobRepository(db)
		job := createJob(t, repo, "PLsrc")

		job.SetDestination("PLcopy", "Copy of Road Trip")
		job.SetItemCount(5)
		job.SetProgress(4, 1, 2)
		job.Finish(nil)

		if err := repo.Update(job); err != nil {
			t.Fatalf("failed to update job: %v", err)
		}

		got, err := repo.Get(job.ID())
		if err != nil {
			t.Fatalf("failed to get job: %v", err)
		}
		if got.DestID() != "PLcopy" || got.Title() != "Copy of Road Trip" {
			t.Errorf("unexpected destination %s %q", got.DestID(), got.Title())
		}
		if got.CompletedCount() != 4 || got.SkippedCount() != 1 || got.Rounds() != 2 {
			t.Errorf("unexpected counters %d/%d/%d", got.CompletedCount(), got.SkippedCount(), got.Rounds())
		}
		if got.Status() != models.JobCompleted || got.FinishedAt() == nil {
			t.Errorf("expected completed job with finish time, got %s", got.Status())
		}
	})

	t.Run("Update records failure", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCopyJobRepository(db)
		job := createJob(t, repo, "PLsrc")
		job.Finish(shared.ErrRetriesExhausted)

		if err := repo.Update(job); err != nil {
			t.Fatalf("failed to update job: %v", err)
		}

		got, _ := repo.Get(job.ID())
		if got.Status() != models.JobFailed || got.Error() != shared.ErrRetriesExhausted.Error() {
			t.Errorf("expected failed job, got %s %q", got.Status(), got.Error())
		}
	})

	t.Run("Delete cascades outcomes", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCopyJobRepository(db)
		job := createJob(t, repo, "PLsrc")
		if err := repo.SaveOutcome(models.ItemOutcome{JobID: job.ID(), RequestID: "item0", VideoID: "v0", State: models.OutcomeCompleted}); err != nil {
			t.Fatalf("failed to save outcome: %v", err)
		}

		if err := repo.Delete(job.ID()); err != nil {
			t.Fatalf("failed to delete job: %v", err)
		}
		if _, err := repo.Get(job.ID()); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}

		outcomes, err := repo.Outcomes(job.ID())
		if err != nil {
			t.Fatalf("failed to list outcomes: %v", err)
		}
		if len(outcomes) != 0 {
			t.Errorf("expected outcomes removed, got %d", len(outcomes))
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCopyJobRepository(db)
		createJob(t, repo, "PLa")
		createJob(t, repo, "PLb")
		failed := createJob(t, repo, "PLa")
		failed.Finish(shared.ErrTimeout)
		if err := repo.Update(failed); err != nil {
			t.Fatalf("failed to update job: %v", err)
		}

		tests := []struct {
			name     string
			criteria map[string]any
			wantSeqs []int
		}{
			{"all newest first", map[string]any{}, []int{3, 2, 1}},
			{"by source", map[string]any{"source_id": "PLa"}, []int{3, 1}},
			{"by status", map[string]any{"status": models.JobFailed}, []int{3}},
			{"limited", map[string]any{"limit": 2}, []int{3, 2}},
			{"nil criteria", nil, []int{3, 2, 1}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				jobs, err := repo.List(tt.criteria)
				if err != nil {
					t.Fatalf("failed to list jobs: %v", err)
				}
				if len(jobs) != len(tt.wantSeqs) {
					t.Fatalf("expected %d jobs, got %d", len(tt.wantSeqs), len(jobs))
				}
				for i, job := range jobs {
					if job.Sequence() != tt.wantSeqs[i] {
						t.Errorf("expected jobs[%d] to be #%d, got #%d", i, tt.wantSeqs[i], job.Sequence())
					}
				}
			})
		}
	})

	t.Run("Outcomes", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCopyJobRepository(db)
		job := createJob(t, repo, "PLsrc")

		outcomes := []models.ItemOutcome{
			{JobID: job.ID(), RequestID: "item2", VideoID: "v2", OriginalPosition: 2, FinalPosition: 1, State: models.OutcomeCompleted, Attempts: 1},
			{JobID: job.ID(), RequestID: "item1", VideoID: "v1", OriginalPosition: 1, FinalPosition: 1, State: models.OutcomeSkipped, Reason: "deleted", Attempts: 1},
			{JobID: job.ID(), RequestID: "item0", VideoID: "v0", OriginalPosition: 0, FinalPosition: 0, State: models.OutcomeCompleted, Attempts: 3},
		}
		for _, o := range outcomes {
			if err := repo.SaveOutcome(o); err != nil {
				t.Fatalf("failed to save outcome: %v", err)
			}
		}

		got, err := repo.Outcomes(job.ID())
		if err != nil {
			t.Fatalf("failed to list outcomes: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 outcomes, got %d", len(got))
		}
		for i, o := range got {
			if o.OriginalPosition != i {
				t.Errorf("expected outcomes ordered by original position, got %d at %d", o.OriginalPosition, i)
			}
		}
		if got[1].State != models.OutcomeSkipped || got[1].Reason != "deleted" {
			t.Errorf("unexpected skipped outcome %+v", got[1])
		}
		if got[0].Attempts != 3 {
			t.Errorf("expected 3 attempts, got %d", got[0].Attempts)
		}
	})
}

func TestCopyJobRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			if err := NewCopyJobRepository(db).Create(models.NewCopyJob(0, "", false, false)); err == nil {
				t.Fatal("expected validation error for empty source id")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewCopyJobRepository(db)
			if _, err := repo.Get("nonexistent-id"); !errors.Is(err, shared.ErrRecordNotFound) {
				t.Errorf("expected ErrRecordNotFound, got %v", err)
			}
			if _, err := repo.GetBySequence(42); !errors.Is(err, shared.ErrRecordNotFound) {
				t.Errorf("expected ErrRecordNotFound, got %v", err)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			job := models.NewCopyJob(0, "PLsrc", false, false)
			job.SetID("nonexistent-id")

			if err := NewCopyJobRepository(db).Update(job); !errors.Is(err, shared.ErrRecordNotFound) {
				t.Errorf("expected ErrRecordNotFound, got %v", err)
			}
		})

		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewCopyJobRepository(db)
			job := createJob(t, repo, "PLsrc")
			job.SetProgress(3, 0, 1)

			if err := repo.Update(job); err == nil {
				t.Fatal("expected validation error when resolved items exceed item count")
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			if err := NewCopyJobRepository(db).Delete("nonexistent-id"); !errors.Is(err, shared.ErrRecordNotFound) {
				t.Errorf("expected ErrRecordNotFound, got %v", err)
			}
		})
	})

	t.Run("SaveOutcome", func(t *testing.T) {
		t.Run("MissingKeys", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			err := NewCopyJobRepository(db).SaveOutcome(models.ItemOutcome{RequestID: "item0"})
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("UnknownJob", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			err := NewCopyJobRepository(db).SaveOutcome(models.ItemOutcome{JobID: "nope", RequestID: "item0", VideoID: "v0"})
			if err == nil {
				t.Fatal("expected foreign key error")
			}
		})
	})
}

func TestCredentialRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		expiry := time.Now().Add(time.Hour).Truncate(time.Second)
		token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", Expiry: expiry}

		if err := repo.SaveToken(ctx, "ytclone", token); err != nil {
			t.Fatalf("failed to save token: %v", err)
		}

		got, err := repo.LoadToken(ctx, "ytclone")
		if err != nil {
			t.Fatalf("failed to load token: %v", err)
		}
		if got.AccessToken != "access" || got.RefreshToken != "refresh" {
			t.Errorf("unexpected token %+v", got)
		}
		if !got.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, got.Expiry)
		}
	})

	t.Run("overwrites existing profile", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		_ = repo.SaveToken(ctx, "ytclone", &oauth2.Token{AccessToken: "old", RefreshToken: "refresh"})
		if err := repo.SaveToken(ctx, "ytclone", &oauth2.Token{AccessToken: "new", RefreshToken: "refresh"}); err != nil {
			t.Fatalf("failed to overwrite token: %v", err)
		}

		got, err := repo.LoadToken(ctx, "ytclone")
		if err != nil {
			t.Fatalf("failed to load token: %v", err)
		}
		if got.AccessToken != "new" {
			t.Errorf("expected new token, got %s", got.AccessToken)
		}
	})

	t.Run("missing profile", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := NewCredentialRepository(db).LoadToken(ctx, "nobody"); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewCredentialRepository(db)
		_ = repo.SaveToken(ctx, "ytclone", &oauth2.Token{AccessToken: "access"})

		if err := repo.DeleteToken(ctx, "ytclone"); err != nil {
			t.Fatalf("failed to delete token: %v", err)
		}
		if _, err := repo.LoadToken(ctx, "ytclone"); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if err := NewCredentialRepository(db).SaveToken(ctx, "", &oauth2.Token{}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestOutcomeRecorder(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewCopyJobRepository(db)
	job := createJob(t, repo, "PLsrc")
	recorder := NewOutcomeRecorder(repo, job.ID())
	ctx := context.Background()

	req := tasks.InsertionRequest{ID: "item3", OriginalPosition: 3, Attempts: 2}
	req.Payload.Resource.VideoID = "v3"
	req.Payload.Position = 2

	tests := []struct {
		name string
		c    tasks.Classification
		want int
	}{
		{"retry is not stored", tasks.Classification{Outcome: tasks.OutcomeRetry}, 0},
		{"fatal is not stored", tasks.Classification{Outcome: tasks.OutcomeFatal}, 0},
		{"skip is stored", tasks.Classification{Outcome: tasks.OutcomeSkip, Status: 404, Reason: "deleted"}, 1},
		{"success overwrites", tasks.Classification{Outcome: tasks.OutcomeSuccess}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := recorder.RecordOutcome(ctx, req, tt.c); err != nil {
				t.Fatalf("failed to record outcome: %v", err)
			}

			outcomes, err := repo.Outcomes(job.ID())
			if err != nil {
				t.Fatalf("failed to list outcomes: %v", err)
			}
			if len(outcomes) != tt.want {
				t.Fatalf("expected %d outcomes, got %d", tt.want, len(outcomes))
			}
		})
	}

	outcomes, _ := repo.Outcomes(job.ID())
	got := outcomes[0]
	if got.State != models.OutcomeCompleted || got.VideoID != "v3" || got.FinalPosition != 2 || got.Attempts != 2 {
		t.Errorf("unexpected outcome %+v", got)
	}
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "copy_jobs")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "credentials"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for unsequenced table, got %v", err)
	}
}
