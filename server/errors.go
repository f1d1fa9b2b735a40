package server

import (
	"context"
	"errors"
	"net/http"

	"turbocycle/load"
	"turbocycle/types"
)

// 错误类别
const (
	KindInvalidParameter = "invalid_parameter"
	KindUnsolvable       = "unsolvable"
	KindNotConverged     = "not_converged"
	KindSchema           = "schema"
	KindCancelled        = "cancelled"
	KindBadRequest       = "bad_request"
	KindInternal         = "internal"
)

type apiError struct {
	Kind       string   `json:"kind"`
	Message    string   `json:"message"`
	Violations []string `json:"violations,omitempty"`
}

// classify 错误映射为状态码与类别
func classify(err error) (int, apiError) {
	e := apiError{Message: err.Error()}
	var se *load.SchemaError
	switch {
	case errors.As(err, &se):
		e.Kind, e.Violations = KindSchema, se.Violations
		return http.StatusBadRequest, e
	case errors.Is(err, types.ErrInvalidParameter):
		e.Kind = KindInvalidParameter
	case errors.Is(err, types.ErrUnsolvable):
		e.Kind = KindUnsolvable
	case errors.Is(err, types.ErrNotConverged):
		e.Kind = KindNotConverged
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		e.Kind = KindCancelled
		return http.StatusServiceUnavailable, e
	default:
		e.Kind = KindBadRequest
		return http.StatusBadRequest, e
	}
	return http.StatusUnprocessableEntity, e
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status, e := classify(err)
	s.log.Debug("请求失败", "status", status, "kind", e.Kind, "err", err)
	writeJSON(w, status, struct {
		Error apiError `json:"error"`
	}{e})
}
