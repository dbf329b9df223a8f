package usersink

import (
	"context"
	"strings"

	"github.com/brightpath-ai/siteadmin/internal/identity"
	"github.com/brightpath-ai/siteadmin/pkg/activity"
	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
	"github.com/google/uuid"
)

// Hook forwards activity events to a go-users compatible activity sink.
type Hook struct {
	Sink interfaces.ActivitySink
}

// Notify maps event onto an activity record. Events without a verb are ignored.
// Actor handles that are not UUIDs are mapped to their deterministic actor id.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil || strings.TrimSpace(event.Verb) == "" {
		return nil
	}

	data := make(map[string]any, len(event.Metadata)+2)
	for key, value := range event.Metadata {
		data[key] = value
	}
	if event.DefinitionCode != "" {
		data["definition_code"] = event.DefinitionCode
	}
	if len(event.Recipients) > 0 {
		data["recipients"] = append([]string(nil), event.Recipients...)
	}

	record := interfaces.ActivityRecord{
		ActorID:    identity.ActorUUID(event.ActorID),
		UserID:     parseUUID(event.UserID),
		TenantID:   parseUUID(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: event.OccurredAt,
	}
	return h.Sink.Log(ctx, record)
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
