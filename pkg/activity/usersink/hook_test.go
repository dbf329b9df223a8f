package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brightpath-ai/siteadmin/internal/identity"
	"github.com/brightpath-ai/siteadmin/pkg/activity"
	"github.com/brightpath-ai/siteadmin/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func recordCreatedEvent(actor string) activity.Event {
	return activity.Event{
		Verb:           "create",
		ActorID:        actor,
		ObjectType:     "use_cases",
		ObjectID:       "3f2f9a6e-5b1c-4b8e-9a51-1b2b8f0c7d11",
		DefinitionCode: "use_cases:create",
		Recipients:     []string{"ops@brightpath.example"},
		Metadata: map[string]any{
			"title":       "Claims triage for a regional insurer",
			"slug":        "claims-triage",
			"order_index": 4,
			"url":         "https://brightpath.example/use-cases/claims-triage",
		},
	}
}

func TestEmitterDeliversRecordCreationToSink(t *testing.T) {
	sink := &recordingSink{}
	emitter := activity.NewEmitter(activity.Hooks{usersink.Hook{Sink: sink}}, activity.Config{Enabled: true, Channel: "email"})

	actor := uuid.New()
	if err := emitter.Emit(context.Background(), recordCreatedEvent(actor.String())); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actor {
		t.Fatalf("expected actor %s got %s", actor, record.ActorID)
	}
	if record.Verb != "create" || record.ObjectType != "use_cases" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "email" {
		t.Fatalf("expected emitter default channel, got %q", record.Channel)
	}
	if record.OccurredAt.IsZero() || record.OccurredAt.Location() != time.UTC {
		t.Fatalf("expected UTC occurred_at stamp, got %v", record.OccurredAt)
	}
	if record.Data["order_index"] != 4 || record.Data["slug"] != "claims-triage" {
		t.Fatalf("expected record metadata, got %v", record.Data)
	}
	if record.Data["definition_code"] != "use_cases:create" {
		t.Fatalf("expected definition_code, got %v", record.Data["definition_code"])
	}
	recipients, ok := record.Data["recipients"].([]string)
	if !ok || len(recipients) != 1 || recipients[0] != "ops@brightpath.example" {
		t.Fatalf("expected mailbox recipient, got %v", record.Data["recipients"])
	}
	if record.UserID != uuid.Nil || record.TenantID != uuid.Nil {
		t.Fatalf("expected empty user and tenant, got %s %s", record.UserID, record.TenantID)
	}
}

func TestHookMapsActorHandles(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	if err := hook.Notify(context.Background(), recordCreatedEvent("Editor@BrightPath.example")); err != nil {
		t.Fatalf("notify: %v", err)
	}
	want := identity.ActorUUID("editor@brightpath.example")
	if sink.records[0].ActorID != want || want == uuid.Nil {
		t.Fatalf("expected deterministic actor %s got %s", want, sink.records[0].ActorID)
	}
}

func TestHookSurfacesSinkFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("activity store offline")}
	emitter := activity.NewEmitter(activity.Hooks{usersink.Hook{Sink: sink}}, activity.Config{Enabled: true})

	if err := emitter.Emit(context.Background(), recordCreatedEvent(uuid.NewString())); err == nil {
		t.Fatalf("expected sink failure to surface")
	}
}

func TestHookSkipsEventsWithoutVerb(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	if err := hook.Notify(context.Background(), activity.Event{ObjectType: "pages"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 0 {
		t.Fatalf("expected no records for event without verb, got %d", len(sink.records))
	}
}
