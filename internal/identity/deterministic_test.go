package identity_test

import (
	"testing"

	"github.com/brightpath-ai/siteadmin/internal/identity"
	"github.com/google/uuid"
)

func TestActorUUIDIsStableAndCaseInsensitive(t *testing.T) {
	first := identity.ActorUUID("Ana@BrightPath.example")
	second := identity.ActorUUID(" ana@brightpath.example ")
	if first == uuid.Nil || first != second {
		t.Fatalf("expected stable non-nil id, got %s and %s", first, second)
	}
	if other := identity.ActorUUID("ben@brightpath.example"); other == first {
		t.Fatalf("expected distinct handles to map to distinct ids")
	}
}

func TestActorUUIDPassesThroughUUIDs(t *testing.T) {
	id := uuid.New()
	if got := identity.ActorUUID(id.String()); got != id {
		t.Fatalf("expected %s, got %s", id, got)
	}
	if got := identity.ActorUUID("   "); got != uuid.Nil {
		t.Fatalf("expected nil id for blank handle, got %s", got)
	}
}

func TestSystemActorDiffersFromUserNamespace(t *testing.T) {
	if identity.SystemActor("seed") == identity.ActorUUID("seed") {
		t.Fatalf("system and user namespaces must not collide")
	}
}
