package controllers

import (
	"errors"
	"net/http"

	"github.com/campusprint/printhub/app/services"
	"github.com/campusprint/printhub/pkg/ctx"
	"github.com/campusprint/printhub/pkg/identity"
	"github.com/campusprint/printhub/pkg/logger"
	"github.com/campusprint/printhub/pkg/middleware"
	"github.com/campusprint/printhub/pkg/response"
)

// fail writes err as the JSON error body.
func fail(c *ctx.Context, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		logger.WithCtx(c.Context()).Error("request failed",
			"error", err.Error(), "method", c.R.Method, "path", c.R.URL.Path)
	}
	c.JSON(status, body)
}

// AuthFailure is the middleware.FailureHandler for both session guards.
func AuthFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		logger.WithCtx(r.Context()).Error("session lookup failed", "error", err.Error())
	}
	response.JSON(w, status, body)
}

func classify(err error) (int, response.ErrorBody) {
	var svcErr *services.Error
	switch {
	case errors.As(err, &svcErr):
		return statusOf(svcErr.Kind), response.ErrorBody{Error: svcErr.Message, Fields: svcErr.Fields}
	case errors.Is(err, middleware.ErrNoSession), errors.Is(err, identity.ErrInvalidSession):
		return http.StatusUnauthorized, response.ErrorBody{Error: "Unauthorized"}
	case errors.Is(err, identity.ErrInvalidCode):
		return http.StatusUnauthorized, response.ErrorBody{Error: "Invalid authorization code"}
	}
	return http.StatusInternalServerError, response.ErrorBody{Error: "Internal Server Error"}
}

func statusOf(kind error) int {
	switch kind {
	case services.ErrValidation, services.ErrConflict:
		return http.StatusBadRequest
	case services.ErrUnauthorized:
		return http.StatusUnauthorized
	case services.ErrForbidden:
		return http.StatusForbidden
	case services.ErrNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
