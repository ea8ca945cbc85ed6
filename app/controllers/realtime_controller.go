package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/groupcart/app/services"
	"github.com/shashiranjanraj/groupcart/pkg/response"
	"github.com/shashiranjanraj/groupcart/pkg/router"
)

// Subscriber upgrades a request into a live feed of one group's events.
type Subscriber interface {
	Serve(w http.ResponseWriter, r *http.Request, groupID string)
}

type RealtimeController struct {
	hub Subscriber
}

func NewRealtimeController(hub Subscriber) *RealtimeController {
	return &RealtimeController{hub: hub}
}

// Connect joins the caller to their group's room.
func (c *RealtimeController) Connect(w http.ResponseWriter, r *http.Request) {
	groupID := router.Param(r, "id")
	if participant(r).GroupID != groupID {
		response.Forbidden(w, services.ErrNotMember.Error())
		return
	}
	c.hub.Serve(w, r, groupID)
}
