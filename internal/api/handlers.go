package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"iutesync/internal/buildinfo"
	"iutesync/internal/iute"
	"iutesync/internal/metrics"
	"iutesync/internal/model"
)

const maxBodyBytes = 1 << 20

// ConfirmHandler handles POST /iute/confirm (merchant userConfirmationUrl).
func (s *Server) ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	s.handleWebhook(w, r)
}

// CancelHandler handles POST /iute/cancel (merchant userCancelUrl).
func (s *Server) CancelHandler(w http.ResponseWriter, r *http.Request) {
	s.handleWebhook(w, r)
}

// handleWebhook verifies the notification signature over the raw body and
// then syncs the referenced order. Both callback URLs run the same logic:
// the provider-reported status, not the endpoint, decides the action.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Read body failed", err.Error(), r.URL.Path)
		return
	}
	env := iute.Envelope{Body: body, Headers: r.Header}
	if err := s.Verifier.Verify(r.Context(), env, s.Domain); err != nil {
		metrics.VerifyFailures.WithLabelValues(verifyFailureReason(err)).Inc()
		writeProblem(w, http.StatusConflict, "Webhook verification failed", err.Error(), r.URL.Path)
		return
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	id := stringField(payload, "orderId")
	if id == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid payload", "orderId required", r.URL.Path)
		return
	}

	res, err := s.Sync.SyncOne(r.Context(), id)
	s.PublishSync(res, err)
	if err != nil {
		writeProblem(w, http.StatusConflict, "Sync failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "result": res})
}

// StatusHandler handles GET /iute/status/{orderId}: a manual sync, useful
// for debugging tag setup.
func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/iute/status/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	res, err := s.Sync.SyncOne(r.Context(), id)
	s.PublishSync(res, err)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Sync failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "result": res})
}

// LoanProductsHandler handles GET /iute/loan-products, proxying the
// provider's product list for merchant tooling.
func (s *Server) LoanProductsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	data, err := s.Admin.LoanProducts(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Loan products failed", err.Error(), r.URL.Path)
		return
	}
	writeRaw(w, data)
}

// MappingsHandler handles GET/POST/DELETE /iute/mappings, proxying
// product-mapping management to the provider.
func (s *Server) MappingsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data, err := s.Admin.ProductMappings(r.Context())
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List mappings failed", err.Error(), r.URL.Path)
			return
		}
		writeRaw(w, data)
	case http.MethodPost, http.MethodDelete:
		var mappings []model.ProductMapping
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&mappings); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		var (
			data json.RawMessage
			err  error
		)
		if r.Method == http.MethodPost {
			data, err = s.Admin.UpsertProductMappings(r.Context(), mappings)
		} else {
			data, err = s.Admin.DeleteProductMappings(r.Context(), mappings)
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Mapping update failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": data})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// HealthHandler handles GET /healthz.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "build": buildinfo.Info()})
}

// ReadyHandler handles GET /readyz.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeRaw(w http.ResponseWriter, data json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func verifyFailureReason(err error) string {
	switch {
	case errors.Is(err, iute.ErrMissingHeader):
		return "missing_header"
	case errors.Is(err, iute.ErrKeyFetch):
		return "key_fetch"
	case errors.Is(err, iute.ErrBadSignature):
		return "bad_signature"
	default:
		return "error"
	}
}

// stringField reads a payload field that some deployments send as a JSON
// string and others as a number.
func stringField(payload map[string]any, key string) string {
	switch v := payload[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
