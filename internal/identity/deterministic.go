package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ActorUUID maps a user handle (email, username, service name) to a stable
// actor id. Values that already parse as UUIDs are returned unchanged.
func ActorUUID(handle string) uuid.UUID {
	trimmed := strings.TrimSpace(handle)
	if trimmed == "" {
		return uuid.Nil
	}
	if parsed, err := uuid.Parse(trimmed); err == nil {
		return parsed
	}
	return UUID("siteadmin:actor:" + strings.ToLower(trimmed))
}

// SystemActor returns the actor id used for writes made by tooling
// (seeding, the CLI) rather than a person.
func SystemActor(name string) uuid.UUID {
	return UUID("siteadmin:system:" + strings.ToLower(strings.TrimSpace(name)))
}
