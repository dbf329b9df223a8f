package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	recordscmd "github.com/brightpath-ai/siteadmin/internal/commands/records"
	"github.com/brightpath-ai/siteadmin/internal/records"
	"github.com/google/uuid"
)

type recordView struct {
	*records.Record
	URL string `json:"url,omitempty"`
}

type listResponse struct {
	Items      []recordView    `json:"items"`
	Total      int             `json:"total"`
	Categories []string        `json:"categories"`
	Filters    records.Filters `json:"filters"`
}

type collectionView struct {
	Name       string         `json:"name"`
	Label      string         `json:"label"`
	Required   []string       `json:"required"`
	Flags      []records.Flag `json:"flags"`
	Template   map[string]any `json:"template,omitempty"`
	Schema     map[string]any `json:"schema,omitempty"`
	Loaded     bool           `json:"loaded"`
	Categories []string       `json:"categories"`
}

type valuesPayload struct {
	Values map[string]any `json:"values"`
}

type reorderPayload struct {
	Direction records.Direction `json:"direction"`
}

type togglePayload struct {
	Flag records.Flag `json:"flag"`
}

type moveResponse struct {
	Moved  bool       `json:"moved"`
	Record recordView `json:"record"`
}

func (api *AdminAPI) view(record *records.Record) recordView {
	out := recordView{Record: record}
	if api.links != nil && record != nil {
		out.URL = api.links.URL(record)
	}
	return out
}

func (api *AdminAPI) manager(w http.ResponseWriter, r *http.Request) (*records.Manager, bool) {
	name := r.PathValue("collection")
	manager, ok := api.managers.Manager(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: "unknown collection " + strconv.Quote(name)})
		return nil, false
	}
	if !manager.Controller().Loaded() {
		if err := manager.Controller().Refresh(r.Context()); err != nil {
			api.writeError(w, r, err)
			return nil, false
		}
	}
	return manager, true
}

func (api *AdminAPI) recordID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (api *AdminAPI) handleCollections(w http.ResponseWriter, r *http.Request) {
	out := make([]collectionView, 0)
	for _, manager := range api.managers.All() {
		desc := manager.Descriptor()
		out = append(out, collectionView{
			Name:       desc.Table,
			Label:      desc.Label,
			Required:   desc.Required,
			Flags:      desc.Flags,
			Template:   desc.Template,
			Schema:     desc.Schema,
			Loaded:     manager.Controller().Loaded(),
			Categories: manager.Controller().Categories(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleList applies the query filters to the collection and returns the
// visible list. Filters persist on the controller so reorder moves are
// computed against the same view.
func (api *AdminAPI) handleList(w http.ResponseWriter, r *http.Request) {
	manager, ok := api.manager(w, r)
	if !ok {
		return
	}
	controller := manager.Controller()
	query := r.URL.Query()
	if query.Has("q") || query.Has("category") || query.Has("status") {
		status, err := records.ParseStatus(query.Get("status"))
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		controller.SetFilters(records.Filters{
			Search:   query.Get("q"),
			Category: query.Get("category"),
			Status:   status,
		})
	}

	resp := listResponse{
		Items:      make([]recordView, 0),
		Total:      len(controller.All()),
		Categories: controller.Categories(),
		Filters:    controller.Filters(),
	}
	for record := range controller.VisibleSeq() {
		resp.Items = append(resp.Items, api.view(record))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (api *AdminAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	manager, ok := api.manager(w, r)
	if !ok {
		return
	}
	id, ok := api.recordID(w, r)
	if !ok {
		return
	}
	record, err := manager.Adapter().Get(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.view(record))
}

func (api *AdminAPI) handleCreate(w http.ResponseWriter, r *http.Request) {
	manager, ok := api.manager(w, r)
	if !ok {
		return
	}
	var payload valuesPayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, err.Error())
		return
	}
	result := &recordscmd.Result{}
	err := api.handlers.Create.Execute(r.Context(), recordscmd.CreateRecordCommand{
		Collection: manager.Descriptor().Table,
		Values:     payload.Values,
		ActorID:    ActorFromContext(r.Context()),
		Result:     result,
	})
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.view(result.Record))
}

func (api *AdminAPI) handleUpdate(w http.ResponseWriter, r *http.Request) {
	manager, ok := api.manager(w, r)
	if !ok {
		return
	}
	id, ok := api.recordID(w, r)
	if !ok {
		return
	}
	var payload valuesPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "values are required")
		return
	}
	result := &recordscmd.Result{}
	err := api.handlers.Update.Execute(r.Context(), recordscmd.UpdateRecordCommand{
		Collection: manager.Descriptor().Table,
		ID:         id,
		Values:     payload.Values,
		ActorID:    ActorFromContext(r.Context()),
		Result:     result,
	})
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.view(result.Record))
}

func (api *AdminAPI) handleReorder(w http.ResponseWriter, r *http.Request) {
	manager, ok := api.manager(w, r)
	if !ok {
		return
	}
	id, ok := api.recordID(w, r)
	if !ok {
		return
	}
	var payload reorderPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "direction is required")
		return
	}
	result := &recordscmd.Result{}
	err := api.handlers.Reorder.Execute(r.Context(), recordscmd.ReorderRecordCommand{
		Collection: manager.Descriptor().Table,
		ID:         id,
		Direction:  payload.Direction,
		ActorID:    ActorFromContext(r.Context()),
		Result:     result,
	})
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, moveResponse{Moved: result.Moved, Record: api.view(result.Record)})
}

func (api *AdminAPI) handleToggle(w http.ResponseWriter, r *http.Request) {
	manager, ok := api.manager(w, r)
	if !ok {
		return
	}
	id, ok := api.recordID(w, r)
	if !ok {
		return
	}
	var payload togglePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, "flag is required")
		return
	}
	result := &recordscmd.Result{}
	err := api.handlers.Toggle.Execute(r.Context(), recordscmd.ToggleFlagCommand{
		Collection: manager.Descriptor().Table,
		ID:         id,
		Flag:       payload.Flag,
		ActorID:    ActorFromContext(r.Context()),
		Result:     result,
	})
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.view(result.Record))
}

func (api *AdminAPI) handleDelete(w http.ResponseWriter, r *http.Request) {
	manager, ok := api.manager(w, r)
	if !ok {
		return
	}
	id, ok := api.recordID(w, r)
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	err := api.handlers.Delete.Execute(r.Context(), recordscmd.DeleteRecordCommand{
		Collection: manager.Descriptor().Table,
		ID:         id,
		Confirmed:  confirmed,
		ActorID:    ActorFromContext(r.Context()),
	})
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *AdminAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("collection")
	if err := api.handlers.Refresh.Execute(r.Context(), recordscmd.RefreshCollectionCommand{Collection: name}); err != nil {
		api.writeError(w, r, err)
		return
	}
	manager, _ := api.managers.Manager(name)
	writeJSON(w, http.StatusOK, map[string]any{"total": len(manager.Controller().All())})
}

func (api *AdminAPI) handlePreview(w http.ResponseWriter, r *http.Request) {
	manager, ok := api.manager(w, r)
	if !ok {
		return
	}
	id, ok := api.recordID(w, r)
	if !ok {
		return
	}
	record, err := manager.Adapter().Get(r.Context(), id)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	html, err := api.previewer.Render(manager.Descriptor(), record)
	if err != nil {
		api.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(html)
}

// handleNotifications returns and dismisses pending notifications.
func (api *AdminAPI) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if api.inbox == nil {
		writeJSON(w, http.StatusOK, []records.Notification{})
		return
	}
	items := api.inbox.Drain()
	if items == nil {
		items = []records.Notification{}
	}
	writeJSON(w, http.StatusOK, items)
}
