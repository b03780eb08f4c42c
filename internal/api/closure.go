package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dskow/smartbee-api/internal/apierror"
	"github.com/dskow/smartbee-api/internal/scenario"
)

// closureRequest is the road closure body. road_id must be present but may
// be empty. duration_hours is accepted and has no effect on the scenario.
type closureRequest struct {
	RoadID        *string `json:"road_id" validate:"required"`
	DurationHours hours   `json:"duration_hours"`
}

// Duration returns duration_hours or its default.
func (c closureRequest) Duration() int {
	if !c.DurationHours.set {
		return scenario.DefaultDurationHours
	}
	return c.DurationHours.value
}

// hours is an integer field that may be omitted but not sent as null.
type hours struct {
	value int
	set   bool
}

// UnmarshalJSON rejects null with a type error so the decoder attributes it
// to the field.
func (h *hours) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return &json.UnmarshalTypeError{Value: "null", Type: reflect.TypeFor[int]()}
	}
	if err := json.Unmarshal(b, &h.value); err != nil {
		return err
	}
	h.set = true
	return nil
}

// newValidator reports failing fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Server) roadClosure(w http.ResponseWriter, r *http.Request) {
	var req closureRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			s.logger.Error("closure request validation error", "error", err)
			apierror.WriteJSON(w, r, http.StatusInternalServerError, apierror.InternalError, "an unexpected error occurred")
			return
		}
		details := make([]apierror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, apierror.FieldError{Field: fe.Field(), Rule: fe.Tag()})
		}
		apierror.WriteDetailed(w, r, http.StatusUnprocessableEntity, apierror.ValidationFailed, "request body failed validation", details)
		return
	}

	roadID := *req.RoadID
	impact, found := s.catalog.Closure(roadID)
	s.lookup("closures", roadID, found)
	s.logger.Debug("road closure simulated", "road_id", roadID, "duration_hours", req.Duration(), "found", found)

	writeJSON(w, http.StatusOK, impact)
}

// decodeBody reads a single JSON object into dst. On failure it writes the
// error response and returns false.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err == nil {
		// Anything after the object makes the body malformed.
		switch _, tokErr := dec.Token(); {
		case tokErr == io.EOF:
		case tokErr != nil:
			err = tokErr
		default:
			err = errors.New("unexpected data after JSON object")
		}
	}
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &maxErr):
		apierror.WriteJSON(w, r, http.StatusRequestEntityTooLarge, apierror.BodyTooLarge, "request body exceeds maximum allowed size")
	case errors.As(err, &typeErr) && typeErr.Field != "":
		apierror.WriteDetailed(w, r, http.StatusUnprocessableEntity, apierror.MalformedBody, "request body has a field of the wrong type",
			[]apierror.FieldError{{Field: typeErr.Field, Rule: "type"}})
	case errors.As(err, &typeErr):
		apierror.WriteJSON(w, r, http.StatusUnprocessableEntity, apierror.MalformedBody, "request body must be a JSON object")
	case errors.Is(err, io.EOF):
		apierror.WriteJSON(w, r, http.StatusUnprocessableEntity, apierror.MalformedBody, "request body is empty")
	default:
		apierror.WriteJSON(w, r, http.StatusUnprocessableEntity, apierror.MalformedBody, "request body is not valid JSON")
	}
	return false
}
