package handlers

import (
	"net/http"

	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/arklabs/arkgw/internal/httpserver/errors"
	"github.com/arklabs/arkgw/internal/registry"
	"github.com/arklabs/arkgw/pkg/client/api"
)

// QueriesHandler exposes the lifecycle operations on query records that A2A
// and OpenAI clients need outside the completion flow itself.
type QueriesHandler struct {
	*Base
}

func NewQueriesHandler(base *Base) *QueriesHandler {
	return &QueriesHandler{Base: base}
}

// HandleGetQuery returns the raw query record.
func (h *QueriesHandler) HandleGetQuery(w ErrorResponseWriter, r *http.Request) {
	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("query name is required", err))
		return
	}

	q, err := h.Registry.GetQuery(r.Context(), name)
	if err != nil {
		if registry.IsNotFound(err) {
			w.RespondWithError(errors.NewNotFoundError("query not found", err))
			return
		}
		w.RespondWithError(errors.NewInternalServerError("failed to get query", err))
		return
	}

	RespondWithJSON(w, http.StatusOK, q)
}

// HandleCancelQuery flags a running query for cancellation. The operation is
// accepted even if the query already reached a terminal phase; the controller
// ignores the flag in that case.
func (h *QueriesHandler) HandleCancelQuery(w ErrorResponseWriter, r *http.Request) {
	log := ctrllog.FromContext(r.Context()).WithName("queries-handler")

	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("query name is required", err))
		return
	}

	if err := h.Registry.CancelQuery(r.Context(), name); err != nil {
		if registry.IsNotFound(err) {
			w.RespondWithError(errors.NewNotFoundError("query not found", err))
			return
		}
		w.RespondWithError(errors.NewInternalServerError("failed to cancel query", err))
		return
	}

	log.Info("query cancellation requested", "query", name)
	RespondWithJSON(w, http.StatusAccepted, api.CancelQueryResponse{Name: name, Status: "canceling"})
}

// HandleDeleteQuery removes a query record. Deleting a query that is already
// gone succeeds.
func (h *QueriesHandler) HandleDeleteQuery(w ErrorResponseWriter, r *http.Request) {
	name, err := GetPathParam(r, "name")
	if err != nil {
		w.RespondWithError(errors.NewBadRequestError("query name is required", err))
		return
	}

	if err := h.Registry.DeleteQuery(r.Context(), name); err != nil {
		w.RespondWithError(errors.NewInternalServerError("failed to delete query", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
