package request

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"garment-erp/internal/pipeline"
	"garment-erp/internal/storage"
)

var validate = validator.New()

// Decode reads a JSON body into v and runs its validate tags. Failures come
// back as *pipeline.ValidationError.
func Decode(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return &pipeline.ValidationError{Msg: "invalid JSON body"}
	}

	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &pipeline.ValidationError{Msg: describe(verrs)}
		}
		return &pipeline.ValidationError{Msg: err.Error()}
	}

	return nil
}

func describe(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "gt", "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// Stage resolves the {stage} URL parameter to a production stage.
func Stage(r *http.Request) (storage.Stage, error) {
	slug := chi.URLParam(r, "stage")
	stage, err := storage.ParseStage(slug)
	if err != nil || !stage.IsProduction() {
		return "", &pipeline.NotFoundError{Entity: "stage", ID: slug}
	}
	return stage, nil
}

// ID parses a positive integer URL parameter.
func ID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &pipeline.ValidationError{Msg: fmt.Sprintf("invalid %s %q", name, raw)}
	}
	return id, nil
}

// LotFilter reads search, from, to and limit query parameters. Dates use the
// 2006-01-02 layout; "to" is inclusive.
func LotFilter(r *http.Request) (storage.LotFilter, error) {
	q := r.URL.Query()
	f := storage.LotFilter{Search: strings.TrimSpace(q.Get("search"))}

	if s := q.Get("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return f, &pipeline.ValidationError{Msg: "invalid from date"}
		}
		f.From = t
	}
	if s := q.Get("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return f, &pipeline.ValidationError{Msg: "invalid to date"}
		}
		f.To = t.AddDate(0, 0, 1)
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return f, &pipeline.ValidationError{Msg: "invalid limit"}
		}
		f.Limit = n
	}

	return f, nil
}
