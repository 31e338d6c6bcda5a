package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Siddarth2230/domain-keys/internal/models"
	"github.com/Siddarth2230/domain-keys/internal/service"
)

// maxBody caps record request bodies.
const maxBody = 1 << 20

type KeyHandler struct {
	service *service.KeyService
}

func NewKeyHandler(svc *service.KeyService) *KeyHandler {
	return &KeyHandler{service: svc}
}

// Register mounts all endpoints on r.
func (h *KeyHandler) Register(r *mux.Router) {
	r.HandleFunc("/keys", h.CreateKeys).Methods(http.MethodPost)
	r.HandleFunc("/keys/{key}", h.InspectKey).Methods(http.MethodGet)
	r.HandleFunc("/txkeys", h.CreateTxKeys).Methods(http.MethodPost)
	r.HandleFunc("/base62/encode/{n}", h.Encode).Methods(http.MethodGet)
	r.HandleFunc("/base62/decode/{s}", h.Decode).Methods(http.MethodGet)
	r.HandleFunc("/records", h.CreateRecord).Methods(http.MethodPost)
	r.HandleFunc("/records/{key}", h.GetRecord).Methods(http.MethodGet)
	r.HandleFunc("/records/{key}", h.UpdateRecord).Methods(http.MethodPut)
	r.HandleFunc("/records/{key}", h.DeleteRecord).Methods(http.MethodDelete)
	r.HandleFunc("/routes", h.RouteCounts).Methods(http.MethodGet)
	r.HandleFunc("/routes/{route}/records", h.ListRoute).Methods(http.MethodGet)
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// queryRoutes reads ?routes=; 0 means the configured count.
func queryRoutes(r *http.Request) (uint8, error) {
	raw := r.URL.Query().Get("routes")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		return 0, err
	}
	return uint8(n), nil
}

// POST /keys?count=N&routes=R
func (h *KeyHandler) CreateKeys(w http.ResponseWriter, r *http.Request) {
	count, err := queryInt(r, "count", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid count")
		return
	}
	routes, err := queryRoutes(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid routes")
		return
	}

	keys, err := h.service.CreateKeys(r.Context(), count, routes)
	if err != nil {
		h.fail(w, r, "create keys", err)
		return
	}
	writeJSON(w, http.StatusOK, models.KeysResponse{Keys: keys})
}

// GET /keys/{key}?routes=R
func (h *KeyHandler) InspectKey(w http.ResponseWriter, r *http.Request) {
	routes, err := queryRoutes(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid routes")
		return
	}

	info, err := h.service.InspectKey(mux.Vars(r)["key"], routes)
	if err != nil {
		h.fail(w, r, "inspect key", err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// POST /txkeys?count=N
func (h *KeyHandler) CreateTxKeys(w http.ResponseWriter, r *http.Request) {
	count, err := queryInt(r, "count", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid count")
		return
	}

	keys, err := h.service.CreateTxKeys(r.Context(), count)
	if err != nil {
		h.fail(w, r, "create tx keys", err)
		return
	}
	writeJSON(w, http.StatusOK, models.TxKeysResponse{Keys: keys})
}

// GET /base62/encode/{n}
func (h *KeyHandler) Encode(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Encode(mux.Vars(r)["n"])
	if err != nil {
		h.fail(w, r, "encode", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /base62/decode/{s}
func (h *KeyHandler) Decode(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Decode(mux.Vars(r)["s"])
	if err != nil {
		h.fail(w, r, "decode", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func decodeRecordRequest(w http.ResponseWriter, r *http.Request) (models.RecordRequest, bool) {
	var req models.RecordRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return req, false
	}
	return req, true
}

// POST /records
func (h *KeyHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRecordRequest(w, r)
	if !ok {
		return
	}

	rec, err := h.service.CreateRecord(r.Context(), req)
	if err != nil {
		h.fail(w, r, "create record", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// GET /records/{key}
func (h *KeyHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.GetRecord(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		h.fail(w, r, "get record", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// PUT /records/{key}
func (h *KeyHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRecordRequest(w, r)
	if !ok {
		return
	}

	rec, err := h.service.UpdateRecord(r.Context(), mux.Vars(r)["key"], req)
	if err != nil {
		h.fail(w, r, "update record", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DELETE /records/{key}
func (h *KeyHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRecord(r.Context(), mux.Vars(r)["key"]); err != nil {
		h.fail(w, r, "delete record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /routes
func (h *KeyHandler) RouteCounts(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.RouteCounts(r.Context())
	if err != nil {
		h.fail(w, r, "route counts", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /routes/{route}/records?limit=N
func (h *KeyHandler) ListRoute(w http.ResponseWriter, r *http.Request) {
	route, err := strconv.ParseUint(mux.Vars(r)["route"], 10, 8)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid route")
		return
	}
	limit, err := queryInt(r, "limit", service.MaxList)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	recs, err := h.service.ListRoute(r.Context(), uint8(route), limit)
	if err != nil {
		h.fail(w, r, "list route", err)
		return
	}
	if recs == nil {
		recs = []*models.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": recs})
}

// fail maps service errors to HTTP responses.
func (h *KeyHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidKey),
		errors.Is(err, service.ErrInvalidValue),
		errors.Is(err, service.ErrInvalidCount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUnavailable):
		writeError(w, http.StatusNotImplemented, err.Error())
	default:
		slog.ErrorContext(r.Context(), op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response failed", "error", err)
	}
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
