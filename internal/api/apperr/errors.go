package apperr

import (
	"errors"
	"net/http"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/5w1tchy/bookshelf-api/internal/coordinator"
)

// StatusOf maps a coordinator error kind to its HTTP status.
func StatusOf(kind coordinator.Kind) int {
	switch kind {
	case coordinator.KindInvalidInput:
		return http.StatusBadRequest
	case coordinator.KindUserNotFound, coordinator.KindBookNotFound, coordinator.KindNotFound:
		return http.StatusNotFound
	case coordinator.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError builds the Problem for an error returned by the coordinator.
// Store faults never leak their cause to the client.
func FromError(err error) Problem {
	kind := coordinator.KindOf(err)
	p := Problem{
		Status:  StatusOf(kind),
		Code:    string(kind),
		Partial: coordinator.IsPartial(err),
	}
	p.Title = http.StatusText(p.Status)

	var ce *coordinator.Error
	if errors.As(err, &ce) && kind != coordinator.KindStoreFault {
		p.Detail = ce.Detail
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		p.Detail = "validation failed"
		p.FieldErrors = fieldErrors(verrs)
	}
	return p
}

// WriteError writes err as a problem response.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	Write(w, r, FromError(err))
}

func fieldErrors(verrs validation.Errors) []FieldError {
	out := make([]FieldError, 0, len(verrs))
	for field, err := range verrs {
		out = append(out, FieldError{Field: field, Message: err.Error()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}
