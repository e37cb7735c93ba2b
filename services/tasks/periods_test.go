package tasks

import (
	"testing"
	"time"

	"github.com/hibiken/asynq"
)

func TestNewMigrateTask(t *testing.T) {
	at := time.Date(2026, 2, 15, 6, 0, 0, 0, time.UTC)
	task, opts, err := NewMigrateTask(TriggerPayload{RequestedBy: "admin", RequestedAt: at})
	if err != nil {
		t.Fatalf("NewMigrateTask error: %v", err)
	}
	if task.Type() != TypeMigrateLegacy {
		t.Fatalf("expected type %s, got %s", TypeMigrateLegacy, task.Type())
	}

	var unique bool
	for _, o := range opts {
		if o.Type() == asynq.UniqueOpt {
			unique = true
		}
	}
	if !unique {
		t.Fatalf("migrate tasks must be enqueued unique")
	}

	p, err := ParsePayload(task)
	if err != nil {
		t.Fatalf("ParsePayload error: %v", err)
	}
	if p.RequestedBy != "admin" || !p.RequestedAt.Equal(at) {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestParsePayload_EmptyAndInvalid(t *testing.T) {
	if _, err := ParsePayload(asynq.NewTask(TypeClosePrevious, nil)); err != nil {
		t.Fatalf("empty payload should parse, got %v", err)
	}
	if _, err := ParsePayload(asynq.NewTask(TypeClosePrevious, []byte("{"))); err == nil {
		t.Fatalf("expected error for invalid payload")
	}
}
