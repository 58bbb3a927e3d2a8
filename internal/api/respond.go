package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"

	"github.com/hackgods/clinic-appointments/internal/appointment"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind appointment.ErrorKind, message string) {
	writeJSON(w, status, appointment.Fail[any](kind, message))
}

// writeResult maps a service Result onto an HTTP status. okStatus is used
// for successful results.
func writeResult[T any](w http.ResponseWriter, okStatus int, res appointment.Result[T]) {
	if res.Success {
		writeJSON(w, okStatus, res)
		return
	}
	writeJSON(w, statusFor(res.Kind), res)
}

func statusFor(kind appointment.ErrorKind) int {
	switch kind {
	case appointment.KindValidation:
		return http.StatusBadRequest
	case appointment.KindNotFound:
		return http.StatusNotFound
	case appointment.KindRejected:
		return http.StatusConflict
	case appointment.KindStoreProtocol:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody parses and validates a JSON request body. On failure it has
// already written the 400 response.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, appointment.KindValidation, "could not parse JSON body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, appointment.KindValidation, err.Error())
		return false
	}
	return true
}
