package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"gitlab.com/agfdbk.net/internal/domain"
	"gitlab.com/agfdbk.net/internal/static/errs"
)

var validate = validator.New()

// DecodeRequest reads a JSON body into dst and checks its validate tags
func DecodeRequest(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

func ResponseWithJson(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// IDVar parses the named path variable as a positive id
func IDVar(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errs.ErrNotFound, name, raw)
	}
	return id, nil
}

// Category reads the feedback_category query parameter. Only staff may ask
// for anything but normal; an absent parameter means normal.
func Category(r *http.Request) (domain.FdbkCategory, error) {
	raw := r.URL.Query().Get("feedback_category")
	if raw == "" {
		return domain.FdbkCategoryNormal, nil
	}
	category, err := domain.ParseFdbkCategory(raw)
	if err != nil {
		return "", err
	}
	if category != domain.FdbkCategoryNormal && !IsStaff(r.Context()) {
		return "", fmt.Errorf("%w: %s feedback is staff only", errs.ErrNotVisible, category)
	}
	return category, nil
}

// Stream reads the stream path variable
func Stream(r *http.Request) (domain.OutputStream, error) {
	switch s := domain.OutputStream(mux.Vars(r)["stream"]); s {
	case domain.OutputStdout, domain.OutputStderr:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown stream %q", errs.ErrNotFound, s)
	}
}
