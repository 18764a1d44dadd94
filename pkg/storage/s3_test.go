package storage

import (
	"testing"
	"time"
)

func TestExportKey(t *testing.T) {
	got := ExportKey(12, "3f1c")
	if got != "exports/activity-12/3f1c.csv" {
		t.Fatalf("unexpected key: %q", got)
	}
}

func TestPresignExpireDefault(t *testing.T) {
	s := &S3{}
	if s.PresignExpire() != 15*time.Minute {
		t.Fatalf("unexpected default: %v", s.PresignExpire())
	}
	s.cfg.PresignExpireMinutes = 60
	if s.PresignExpire() != time.Hour {
		t.Fatalf("unexpected configured: %v", s.PresignExpire())
	}
}
