package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxBodyBytes bounds HTTP request bodies.
const maxBodyBytes = 1 << 20

// HealthResponse is returned by health endpoints. The HTTP endpoint only
// populates Status; the RPC method fills in every field.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Clients int    `json:"clients,omitempty"`
	Uptime  int64  `json:"uptimeMs,omitempty"`
}

// ValidationError describes one rejected request field, in the
// {"loc", "msg", "type"} shape clients of the API already parse.
type ValidationError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// errorDetail is the body of every non-2xx HTTP response.
type errorDetail struct {
	Detail any `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorDetail{Detail: "Not Found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, errorDetail{Detail: detail})
}

// decodeBody reads a JSON object from the request into dst. Fields named in
// required must be present and non-null. On failure it writes a 422 response
// and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, required ...string) bool {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeDetail(w, status, err.Error())
		return false
	}
	if errs := validateJSON(data, dst, required); len(errs) > 0 {
		writeDetail(w, http.StatusUnprocessableEntity, errs)
		return false
	}
	return true
}

// validateJSON unmarshals data into dst and reports every problem found.
func validateJSON(data []byte, dst any, required []string) []ValidationError {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return []ValidationError{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error.jsondecode"}}
	}

	var errs []ValidationError
	for _, name := range required {
		if raw, ok := fields[name]; !ok || string(raw) == "null" {
			errs = append(errs, ValidationError{Loc: []string{"body", name}, Msg: "field required", Type: "value_error.missing"})
		}
	}
	if len(errs) > 0 {
		return errs
	}

	if err := json.Unmarshal(data, dst); err != nil {
		loc := []string{"body"}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			loc = append(loc, typeErr.Field)
		}
		return []ValidationError{{Loc: loc, Msg: err.Error(), Type: "type_error"}}
	}
	return nil
}

// RequestHandler processes an incoming RPC request frame from a client.
type RequestHandler func(rc *RequestContext)

// RequestContext carries everything an RPC handler needs.
type RequestContext struct {
	Ctx    context.Context
	Client *Client
	Frame  Frame
	Server *Server
}

// Respond sends a success response.
func (rc *RequestContext) Respond(payload any) {
	if err := rc.Client.Respond(rc.Frame.ID, payload); err != nil {
		rc.Server.log.Warn().Err(err).Str("method", rc.Frame.Method).Msg("failed to send response")
	}
}

// RespondError sends an error response.
func (rc *RequestContext) RespondError(code, message string) {
	if err := rc.Client.RespondError(rc.Frame.ID, ErrorShape{Code: code, Message: message}); err != nil {
		rc.Server.log.Warn().Err(err).Str("method", rc.Frame.Method).Msg("failed to send error response")
	}
}

// Params unmarshals the request params into target, enforcing required fields.
// It responds with invalid_params and returns false on failure.
func (rc *RequestContext) Params(target any, required ...string) bool {
	data := []byte(rc.Frame.Params)
	if len(data) == 0 || string(data) == "null" {
		data = []byte("{}")
	}
	if errs := validateJSON(data, target, required); len(errs) > 0 {
		rc.Client.RespondError(rc.Frame.ID, ErrorShape{
			Code:    CodeInvalidParams,
			Message: fmt.Sprintf("%s: %s", strings.Join(errs[0].Loc, "."), errs[0].Msg),
			Details: errs,
		})
		return false
	}
	return true
}
