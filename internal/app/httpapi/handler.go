// Package httpapi is the request boundary: it decodes payloads, invokes the
// lifecycle services and maps fault tags to transport status codes. The
// services themselves know nothing about HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	app "github.com/microblog/service_layer/internal/app"
	"github.com/microblog/service_layer/internal/app/domain/account"
	"github.com/microblog/service_layer/internal/app/domain/message"
	"github.com/microblog/service_layer/internal/app/fault"
	"github.com/microblog/service_layer/internal/app/metrics"
	"github.com/microblog/service_layer/pkg/logger"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
	log *logger.Logger
}

// NewHandler returns the API router with request-id, logging and metrics
// middleware applied.
func NewHandler(application *app.Application, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{app: application, log: log}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware, loggingMiddleware(log))

	r.HandleFunc("/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/messages", h.postMessage).Methods(http.MethodPost)
	r.HandleFunc("/messages", h.listMessages).Methods(http.MethodGet)
	r.HandleFunc("/messages/{id:[0-9]+}", h.getMessage).Methods(http.MethodGet)
	r.HandleFunc("/messages/{id:[0-9]+}", h.updateMessage).Methods(http.MethodPatch)
	r.HandleFunc("/messages/{id:[0-9]+}", h.deleteMessage).Methods(http.MethodDelete)
	r.HandleFunc("/accounts/{id:[0-9]+}/messages", h.listAccountMessages).Methods(http.MethodGet)

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return metrics.InstrumentHandler(r)
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var candidate account.Account
	if err := decodeJSON(r.Body, &candidate); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.app.Accounts.Register(r.Context(), candidate)
	if err != nil {
		metrics.RecordRegistration("rejected")
		writeFault(w, err, http.StatusBadRequest)
		return
	}
	metrics.RecordRegistration("created")
	writeJSON(w, http.StatusOK, created)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var candidate account.Account
	if err := decodeJSON(r.Body, &candidate); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	acct, err := h.app.Accounts.Authenticate(r.Context(), candidate.Username, candidate.Password)
	if err != nil {
		writeFault(w, err, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *handler) postMessage(w http.ResponseWriter, r *http.Request) {
	var candidate message.Message
	if err := decodeJSON(r.Body, &candidate); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.app.Messages.Post(r.Context(), candidate)
	if err != nil {
		metrics.RecordMessageOperation("post", "rejected")
		writeFault(w, err, http.StatusBadRequest)
		return
	}
	metrics.RecordMessageOperation("post", "created")
	writeJSON(w, http.StatusOK, created)
}

func (h *handler) listMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.app.Messages.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *handler) getMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	msg, err := h.app.Messages.Get(r.Context(), id)
	if err != nil {
		// An absent message answers with an empty 200 body.
		if errors.Is(err, fault.ErrNotFound) {
			w.WriteHeader(http.StatusOK)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *handler) updateMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var payload struct {
		Text string `json:"message_text"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	updated, err := h.app.Messages.Update(r.Context(), id, payload.Text)
	if err != nil {
		metrics.RecordMessageOperation("update", "rejected")
		writeFault(w, err, http.StatusBadRequest)
		return
	}
	metrics.RecordMessageOperation("update", "updated")
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deleted, err := h.app.Messages.Delete(r.Context(), id)
	if err != nil {
		// Deleting an absent message is a successful no-op on the wire.
		if errors.Is(err, fault.ErrNotFound) {
			metrics.RecordMessageOperation("delete", "absent")
			w.WriteHeader(http.StatusOK)
			return
		}
		metrics.RecordMessageOperation("delete", "failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	metrics.RecordMessageOperation("delete", "deleted")
	writeJSON(w, http.StatusOK, deleted)
}

func (h *handler) listAccountMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	msgs, err := h.app.Messages.ListByAccount(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return 0, false
	}
	return id, true
}

// writeFault maps a service fault to a status code: validation faults are
// always 400, not-found uses the route-specific code, anything else is an
// unexpected persistence failure.
func writeFault(w http.ResponseWriter, err error, notFoundStatus int) {
	switch {
	case errors.Is(err, fault.ErrValidation):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, fault.ErrNotFound):
		writeError(w, notFoundStatus, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
