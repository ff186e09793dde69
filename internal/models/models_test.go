package models

import (
	"errors"
	"testing"
)

func TestPlaylist(t *testing.T) {
	t.Run("ForCopy strips account scoped fields", func(t *testing.T) {
		src := Playlist{
			ID:            "PLsource",
			ETag:          "etag",
			Title:         "Road Trip",
			Description:   "songs",
			ChannelID:     "UCowner",
			Tags:          []string{"rock"},
			PrivacyStatus: "unlisted",
			ItemCount:     42,
		}

		got := src.ForCopy("Copy of ")

		if got.ID != "" || got.ETag != "" || got.ChannelID != "" || got.ItemCount != 0 {
			t.Errorf("expected stripped fields, got %+v", got)
		}
		if got.Title != "Copy of Road Trip" {
			t.Errorf("expected prefixed title, got %q", got.Title)
		}
		if got.Description != "songs" || got.PrivacyStatus != "unlisted" {
			t.Errorf("expected description and privacy to carry over, got %+v", got)
		}

		got.Tags[0] = "jazz"
		if src.Tags[0] != "rock" {
			t.Error("ForCopy should not share the tag slice with the source")
		}
	})

	t.Run("ForCopy without prefix", func(t *testing.T) {
		if got := (Playlist{Title: "Mix"}).ForCopy(""); got.Title != "Mix" {
			t.Errorf("expected title unchanged, got %q", got.Title)
		}
	})
}

func TestItem(t *testing.T) {
	item := Item{
		ID:             "UExpdGVt",
		ETag:           "etag",
		PlaylistID:     "PLsource",
		Resource:       Resource{Kind: "youtube#video", VideoID: "dQw4w9WgXcQ"},
		Position:       3,
		OwnerChannelID: "UCowner",
		Note:           "keep",
	}

	got := item.ForInsert("PLdest")

	if got.ID != "" || got.ETag != "" || got.OwnerChannelID != "" {
		t.Errorf("expected source scoped fields cleared, got %+v", got)
	}
	if got.PlaylistID != "PLdest" {
		t.Errorf("expected playlist id PLdest, got %s", got.PlaylistID)
	}
	if got.Resource != item.Resource || got.Position != 3 || got.Note != "keep" {
		t.Errorf("expected resource, position and note preserved, got %+v", got)
	}
}

func TestCopyJob(t *testing.T) {
	t.Run("new job is running and valid", func(t *testing.T) {
		job := NewCopyJob(1, "PLsource", true, false)
		if job.Status() != JobRunning {
			t.Errorf("expected running, got %s", job.Status())
		}
		if err := job.Validate(); err != nil {
			t.Errorf("unexpected validation error: %v", err)
		}
		if job.CreatedAt().IsZero() || job.UpdatedAt().IsZero() {
			t.Error("expected timestamps to be set")
		}
	})

	t.Run("requires source id", func(t *testing.T) {
		if err := NewCopyJob(1, "", false, false).Validate(); err == nil {
			t.Error("expected error for empty source id")
		}
	})

	t.Run("rejects counters beyond item count", func(t *testing.T) {
		job := NewCopyJob(1, "PL", false, false)
		job.SetItemCount(2)
		job.SetProgress(2, 1, 1)
		if err := job.Validate(); err == nil {
			t.Error("expected error when resolved items exceed item count")
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		job := NewCopyJob(1, "PL", false, false)
		job.SetStatus(JobStatus("paused"))
		if err := job.Validate(); err == nil {
			t.Error("expected error for unknown status")
		}
	})

	t.Run("Finish", func(t *testing.T) {
		ok := NewCopyJob(1, "PL", false, false)
		ok.Finish(nil)
		if ok.Status() != JobCompleted || ok.FinishedAt() == nil {
			t.Errorf("expected completed job with finish time, got %s", ok.Status())
		}

		failed := NewCopyJob(2, "PL", false, false)
		failed.Finish(errors.New("boom"))
		if failed.Status() != JobFailed || failed.Error() != "boom" {
			t.Errorf("expected failed job with message, got %s %q", failed.Status(), failed.Error())
		}
	})
}
