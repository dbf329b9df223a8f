package usersink

import (
	"context"

	"github.com/brightpath-ai/siteadmin/internal/logging"
	"github.com/brightpath-ai/siteadmin/pkg/interfaces"
)

// LogSink writes activity records to a logger. It stands in for a go-users
// activity store or a mail relay when none is configured.
type LogSink struct {
	Logger interfaces.Logger
}

func (s LogSink) Log(ctx context.Context, record interfaces.ActivityRecord) error {
	logger := s.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	logger.WithContext(ctx).Info("activity.recorded",
		"verb", record.Verb,
		"object_type", record.ObjectType,
		"object_id", record.ObjectID,
		"channel", record.Channel,
		"actor_id", record.ActorID.String(),
		"data", record.Data,
	)
	return nil
}
