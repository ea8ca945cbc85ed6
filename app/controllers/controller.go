// Package controllers adapts HTTP requests onto the services. Handlers
// decode and validate the body, call one service method and write the
// result through pkg/response.
package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/groupcart/app/services"
	"github.com/shashiranjanraj/groupcart/pkg/auth"
	"github.com/shashiranjanraj/groupcart/pkg/bind"
	"github.com/shashiranjanraj/groupcart/pkg/logger"
	"github.com/shashiranjanraj/groupcart/pkg/response"
)

// decode binds the JSON body into dest. On failure the response has been
// written and decode returns false.
func decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	errs, err := bind.JSON(w, r, dest)
	if err != nil {
		response.BadRequest(w, err.Error())
		return false
	}
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return false
	}
	return true
}

// participant returns the caller identified by the token middleware, or the
// zero Participant on public routes.
func participant(r *http.Request) auth.Participant {
	p, _ := auth.FromCtx(r.Context())
	return p
}

// fail maps a service error onto the response envelope.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.WithCtx(r.Context())

	var de *services.DispatchError
	if errors.As(err, &de) {
		log.Error("invoice dispatch incomplete", "order_id", de.OrderID, "sent", de.Sent, "failed", len(de.Failed))
		response.ErrorWithDetails(w, http.StatusInternalServerError, "Failed to send some invoices", de.Failed)
		return
	}

	var ae *services.AppError
	if !errors.As(err, &ae) {
		log.Error("unhandled error", "error", err)
		response.InternalError(w, "")
		return
	}

	switch ae.Kind {
	case services.KindValidation:
		if len(ae.Fields) > 0 {
			response.ValidationError(w, ae.Fields)
			return
		}
		response.BadRequest(w, ae.Message)
	case services.KindNotFound:
		response.NotFound(w, ae.Message)
	case services.KindConflict:
		response.Conflict(w, ae.Message)
	case services.KindForbidden:
		response.Forbidden(w, ae.Message)
	default:
		log.Error(ae.Message, "error", ae.Err)
		response.InternalError(w, ae.Message)
	}
}
