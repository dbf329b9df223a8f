package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/brightpath-ai/siteadmin/internal/identity"
	"github.com/brightpath-ai/siteadmin/internal/logging"
	"github.com/brightpath-ai/siteadmin/internal/records"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type errorResponse struct {
	Error   string                `json:"error"`
	Kind    string                `json:"kind,omitempty"`
	Message string                `json:"message,omitempty"`
	Issues  []goerrors.FieldError `json:"issues,omitempty"`
}

type actorKey struct{}

// ActorFromContext returns the acting user resolved by the auth gate.
func ActorFromContext(ctx context.Context) uuid.UUID {
	if actor, ok := ctx.Value(actorKey{}).(uuid.UUID); ok {
		return actor
	}
	return uuid.Nil
}

// authenticated resolves the actor header and rejects anonymous requests.
func (api *AdminAPI) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := identity.ActorUUID(r.Header.Get(api.actorHeader))
		if actor == uuid.Nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{
				Error:   "unauthorized",
				Message: api.actorHeader + " header is required",
			})
			return
		}
		ctx := context.WithValue(r.Context(), actorKey{}, actor)
		ctx = logging.ContextWithFields(ctx, map[string]any{
			"actor_id": actor.String(),
			"route":    r.Pattern,
		})
		next(w, r.WithContext(ctx))
	})
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.Trim(strings.TrimSpace(base), "/")
	trimmedSuffix := strings.Trim(strings.TrimSpace(suffix), "/")
	switch {
	case trimmedBase == "" && trimmedSuffix == "":
		return "/"
	case trimmedBase == "":
		return "/" + trimmedSuffix
	case trimmedSuffix == "":
		return "/" + trimmedBase
	default:
		return "/" + trimmedBase + "/" + trimmedSuffix
	}
}

// decodeJSON reads a JSON body. An empty body yields io.EOF.
func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

func (api *AdminAPI) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		api.logger.WithContext(r.Context()).Error("http.request.failed", "error", err, "status", status)
	}
	writeJSON(w, status, payload)
}

// mapError picks the status from the go-errors category set by the command
// layer and falls back to the records error taxonomy.
func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}
	resp := errorResponse{Kind: records.Kind(err), Message: err.Error()}

	var typed *goerrors.Error
	if errors.As(err, &typed) {
		resp.Issues = typed.ValidationErrors
		if typed.TextCode != "" {
			resp.Error = strings.ToLower(typed.TextCode)
		}
	}

	status := http.StatusInternalServerError
	switch {
	case goerrors.IsCategory(err, goerrors.CategoryValidation), goerrors.IsCategory(err, goerrors.CategoryBadInput):
		status = http.StatusUnprocessableEntity
	case goerrors.IsCategory(err, goerrors.CategoryNotFound), errors.Is(err, records.ErrNotFound):
		status = http.StatusNotFound
	case goerrors.IsCategory(err, goerrors.CategoryConflict), errors.Is(err, records.ErrReorderInconsistent):
		status = http.StatusConflict
	case goerrors.IsCategory(err, goerrors.CategoryExternal), errors.Is(err, records.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	case goerrors.IsCategory(err, goerrors.CategoryAuth):
		status = http.StatusUnauthorized
	case errors.Is(err, records.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if resp.Error == "" {
		resp.Error = strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
	}
	return status, resp
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	return uuid.Parse(trimmed)
}
