package usersink_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/brightpath-ai/siteadmin/internal/logging/console"
	"github.com/brightpath-ai/siteadmin/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
)

func TestLogSinkWritesRecord(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})
	sink := usersink.LogSink{Logger: provider.GetLogger("siteadmin.activity")}

	err := sink.Log(context.Background(), usertypes.ActivityRecord{
		Verb:       "create",
		ObjectType: "services",
		ObjectID:   "ai-strategy",
		Channel:    "email",
	})
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"activity.recorded", "verb=create", "object_type=services", "channel=email"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestLogSinkWithoutLoggerIsNoOp(t *testing.T) {
	if err := (usersink.LogSink{}).Log(context.Background(), usertypes.ActivityRecord{Verb: "create"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
