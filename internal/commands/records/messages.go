package recordscmd

import (
	"strings"

	"github.com/brightpath-ai/siteadmin/internal/records"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	createMessageType  = "siteadmin.records.create"
	updateMessageType  = "siteadmin.records.update"
	reorderMessageType = "siteadmin.records.reorder"
	toggleMessageType  = "siteadmin.records.toggle_flag"
	deleteMessageType  = "siteadmin.records.delete"
	refreshMessageType = "siteadmin.records.refresh"
	importMessageType  = "siteadmin.records.import_seeds"
)

// Result receives the outcome of a command. Callers that need the saved record
// pass a non-nil Result on the message.
type Result struct {
	Record *records.Record
	// Moved is false when a reorder hit a list boundary.
	Moved bool
	// Import is set by ImportSeedsCommand.
	Import *ImportSummary
}

// ImportSummary counts the outcome of a seed import.
type ImportSummary struct {
	Created   []string `json:"created"`
	Updated   []string `json:"updated"`
	Unchanged []string `json:"unchanged"`
	Errors    []string `json:"errors,omitempty"`
}

// CreateRecordCommand opens a draft from the collection template, applies
// Values and saves it.
type CreateRecordCommand struct {
	Collection string         `json:"collection"`
	Values     map[string]any `json:"values"`
	ActorID    uuid.UUID      `json:"actor_id"`
	Result     *Result        `json:"-"`
}

func (CreateRecordCommand) Type() string { return createMessageType }

func (cmd CreateRecordCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Collection, validation.By(collectionRule)),
		validation.Field(&cmd.ActorID, validation.By(actorRule)),
	)
}

// UpdateRecordCommand edits an existing record. Values are applied as field
// paths in sorted order, so "fields.pricing.model" addresses nested payload.
type UpdateRecordCommand struct {
	Collection string         `json:"collection"`
	ID         uuid.UUID      `json:"id"`
	Values     map[string]any `json:"values"`
	ActorID    uuid.UUID      `json:"actor_id"`
	Result     *Result        `json:"-"`
}

func (UpdateRecordCommand) Type() string { return updateMessageType }

func (cmd UpdateRecordCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Collection, validation.By(collectionRule)),
		validation.Field(&cmd.ID, validation.By(idRule)),
		validation.Field(&cmd.Values, validation.Required.Error("at least one value is required")),
		validation.Field(&cmd.ActorID, validation.By(actorRule)),
	)
}

// ReorderRecordCommand moves a record one slot within the visible list.
// Filters narrow the visible list the move is computed against.
type ReorderRecordCommand struct {
	Collection string            `json:"collection"`
	ID         uuid.UUID         `json:"id"`
	Direction  records.Direction `json:"direction"`
	Filters    *records.Filters  `json:"filters,omitempty"`
	ActorID    uuid.UUID         `json:"actor_id"`
	Result     *Result           `json:"-"`
}

func (ReorderRecordCommand) Type() string { return reorderMessageType }

func (cmd ReorderRecordCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Collection, validation.By(collectionRule)),
		validation.Field(&cmd.ID, validation.By(idRule)),
		validation.Field(&cmd.Direction, validation.Required, validation.In(records.Up, records.Down).
			Error("direction must be up or down")),
		validation.Field(&cmd.ActorID, validation.By(actorRule)),
	)
}

// ToggleFlagCommand flips one visibility flag.
type ToggleFlagCommand struct {
	Collection string       `json:"collection"`
	ID         uuid.UUID    `json:"id"`
	Flag       records.Flag `json:"flag"`
	ActorID    uuid.UUID    `json:"actor_id"`
	Result     *Result      `json:"-"`
}

func (ToggleFlagCommand) Type() string { return toggleMessageType }

func (cmd ToggleFlagCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Collection, validation.By(collectionRule)),
		validation.Field(&cmd.ID, validation.By(idRule)),
		validation.Field(&cmd.Flag, validation.Required, validation.In(
			records.FlagFeatured, records.FlagPublished, records.FlagActive,
		).Error("unknown flag")),
		validation.Field(&cmd.ActorID, validation.By(actorRule)),
	)
}

// DeleteRecordCommand removes a record. Confirmed must be set; the admin
// surfaces ask the operator before sending it.
type DeleteRecordCommand struct {
	Collection string    `json:"collection"`
	ID         uuid.UUID `json:"id"`
	Confirmed  bool      `json:"confirmed"`
	ActorID    uuid.UUID `json:"actor_id"`
}

func (DeleteRecordCommand) Type() string { return deleteMessageType }

func (cmd DeleteRecordCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Collection, validation.By(collectionRule)),
		validation.Field(&cmd.ID, validation.By(idRule)),
		validation.Field(&cmd.Confirmed, validation.Required.Error("deletion must be confirmed")),
		validation.Field(&cmd.ActorID, validation.By(actorRule)),
	)
}

// RefreshCollectionCommand reloads a collection from the store.
type RefreshCollectionCommand struct {
	Collection string `json:"collection"`
}

func (RefreshCollectionCommand) Type() string { return refreshMessageType }

func (cmd RefreshCollectionCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Collection, validation.By(collectionRule)),
	)
}

// ImportSeedsCommand loads Markdown seed files from Directory. An empty
// Collections list imports every managed collection.
type ImportSeedsCommand struct {
	Directory   string    `json:"directory"`
	Collections []string  `json:"collections,omitempty"`
	ActorID     uuid.UUID `json:"actor_id"`
	Result      *Result   `json:"-"`
}

func (ImportSeedsCommand) Type() string { return importMessageType }

func (cmd ImportSeedsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("siteadmin.records.directory_required", "directory is required")
			}
			return nil
		})),
		validation.Field(&cmd.ActorID, validation.By(actorRule)),
	)
}

func collectionRule(value any) error {
	if strings.TrimSpace(value.(string)) == "" {
		return validation.NewError("siteadmin.records.collection_required", "collection is required")
	}
	return nil
}

func idRule(value any) error {
	if value.(uuid.UUID) == uuid.Nil {
		return validation.NewError("siteadmin.records.id_required", "id is required")
	}
	return nil
}

func actorRule(value any) error {
	if value.(uuid.UUID) == uuid.Nil {
		return validation.NewError("siteadmin.records.actor_required", "acting user id is required")
	}
	return nil
}
