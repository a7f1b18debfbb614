package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mytheresa/catalog-service/models"
	"go.uber.org/zap"
)

// maxRequestBodySize limits POST body sizes.
const maxRequestBodySize = 1 << 20

type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// OKResponse writes a JSON body with the given status.
func OKResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// ErrorResponseWithStatus writes {"error": msg}.
func ErrorResponseWithStatus(w http.ResponseWriter, status int, msg string) {
	OKResponse(w, status, ErrorResponse{Error: msg})
}

// StoreError maps repository errors to a status. fallback is the message
// used for unexpected failures, which are logged instead of returned.
func StoreError(w http.ResponseWriter, r *http.Request, err error, notFound, fallback string) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		OKResponse(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: ve.Fields()})
	case errors.Is(err, models.ErrNotFound):
		ErrorResponseWithStatus(w, http.StatusNotFound, notFound)
	case errors.Is(err, models.ErrDuplicate):
		ErrorResponseWithStatus(w, http.StatusConflict, "already exists")
	case errors.Is(err, models.ErrProtected):
		ErrorResponseWithStatus(w, http.StatusConflict, "referenced by other records")
	case errors.Is(err, models.ErrIntegrity):
		ErrorResponseWithStatus(w, http.StatusConflict, "integrity violation")
	default:
		Logger(r.Context()).Error(fallback, zap.Error(err))
		ErrorResponseWithStatus(w, http.StatusInternalServerError, fallback)
	}
}

// DecodeJSON reads a bounded JSON body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// PathID parses a numeric path value; zero means invalid.
func PathID(r *http.Request, name string) uint {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

// Pagination parses offset and limit, clamping limit to [1, 100].
func Pagination(r *http.Request) (offset, limit int) {
	offset = 0
	limit = 10

	if oStr := r.URL.Query().Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > 100 {
				limit = 100
			} else {
				limit = l
			}
		}
	}
	return offset, limit
}

// BoolQuery reads a boolean query parameter, defaulting on absence or garbage.
func BoolQuery(r *http.Request, name string, fallback bool) bool {
	if v := r.URL.Query().Get(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
