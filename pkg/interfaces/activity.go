package interfaces

import (
	"context"

	usertypes "github.com/goliatone/go-users/pkg/types"
)

// ActivityRecord is the go-users activity record.
type ActivityRecord = usertypes.ActivityRecord

// ActivitySink persists activity records, such as the go-users activity store
// or a notification mailbox.
type ActivitySink interface {
	Log(ctx context.Context, record ActivityRecord) error
}
