package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	e "github.com/karirconnect/backoffice/internal/company/errors"
	"github.com/karirconnect/backoffice/internal/company/notify"
	"go.uber.org/zap"
)

// MsgInternal is shown for every error the client cannot act on.
const MsgInternal = "Terjadi kesalahan. Silakan coba lagi."

type errorBody struct {
	Error  string         `json:"error"`
	Errors []e.FieldError `json:"errors,omitempty"`
}

// writeJSON encodes body as an object and attaches the request's notifications.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	payload, err := toObject(body)
	if err != nil {
		http.Error(w, MsgInternal, http.StatusInternalServerError)
		return
	}
	if bag := notify.FromContext(r.Context()); bag != nil {
		if items := bag.Items(); len(items) > 0 {
			payload["notifications"] = items
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func toObject(body interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	payload := map[string]interface{}{}
	if err := dec.Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// mapServiceError maps domain or repository errors to an HTTP status and the
// body shown to the client.
func mapServiceError(err error, logger *zap.Logger) (int, errorBody) {
	var verr *e.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, errorBody{Error: verr.First().Message, Errors: verr.Fields}
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "Data tidak ditemukan."}
	case errors.Is(err, e.ErrDuplicateName):
		return http.StatusConflict, errorBody{Error: "Nama perusahaan sudah digunakan."}
	case errors.Is(err, e.ErrConflict):
		return http.StatusConflict, errorBody{Error: "Status verifikasi sudah berubah."}
	case errors.Is(err, e.ErrInvalidInput):
		return http.StatusUnprocessableEntity, errorBody{Error: err.Error()}
	case errors.Is(err, e.ErrForbidden):
		return http.StatusForbidden, errorBody{Error: "Access denied."}
	case errors.Is(err, e.ErrUnauthenticated):
		return http.StatusUnauthorized, errorBody{Error: "Unauthenticated."}
	default:
		logger.Error("Internal server error", zap.Error(err))
		return http.StatusInternalServerError, errorBody{Error: MsgInternal}
	}
}

// writeError answers with the mapped error and, when notifier is set, an
// error notification carrying message (or the mapped message when empty).
func writeError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger, notifier notify.Dispatcher, message string) {
	status, body := mapServiceError(err, logger)
	if notifier != nil {
		if message == "" {
			message = body.Error
		}
		notifier.Error(r.Context(), message)
	}
	writeJSON(w, r, status, body)
}
