package controllers

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/groupcart/app/models"
	"github.com/shashiranjanraj/groupcart/app/services"
	"github.com/shashiranjanraj/groupcart/pkg/response"
	"github.com/shashiranjanraj/groupcart/pkg/router"
)

type GroupController struct {
	groups *services.GroupService
}

func NewGroupController(groups *services.GroupService) *GroupController {
	return &GroupController{groups: groups}
}

type createGroupRequest struct {
	Email     string `json:"email"     validate:"required,email"`
	FirstName string `json:"firstName" validate:"required,max=100"`
}

// Store creates a group and returns the creator's session token.
func (c *GroupController) Store(w http.ResponseWriter, r *http.Request) {
	var body createGroupRequest
	if !decode(w, r, &body) {
		return
	}
	sess, err := c.groups.Create(r.Context(), services.CreateGroupInput{Email: body.Email, FirstName: body.FirstName})
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, sess)
}

type joinGroupRequest struct {
	Code      string `json:"code"      validate:"required,size=6,alpha_dash"`
	Email     string `json:"email"     validate:"required,email"`
	FirstName string `json:"firstName" validate:"required,max=100"`
}

func (c *GroupController) Join(w http.ResponseWriter, r *http.Request) {
	var body joinGroupRequest
	if !decode(w, r, &body) {
		return
	}
	sess, err := c.groups.Join(r.Context(), services.JoinGroupInput{
		Code:      body.Code,
		Email:     body.Email,
		FirstName: body.FirstName,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, sess)
}

func (c *GroupController) Show(w http.ResponseWriter, r *http.Request) {
	g, err := c.groups.Get(r.Context(), router.Param(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, g)
}

func (c *GroupController) Members(w http.ResponseWriter, r *http.Request) {
	members, err := c.groups.Members(r.Context(), router.Param(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, members)
}

func (c *GroupController) Member(w http.ResponseWriter, r *http.Request) {
	m, err := c.groups.Member(r.Context(), router.Param(r, "id"), router.Param(r, "email"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, m)
}

type selectRestaurantRequest struct {
	RestaurantID string `json:"restaurantId" validate:"required"`
}

func (c *GroupController) SelectRestaurant(w http.ResponseWriter, r *http.Request) {
	var body selectRestaurantRequest
	if !decode(w, r, &body) {
		return
	}
	g, err := c.groups.SelectRestaurant(r.Context(), participant(r), router.Param(r, "id"), body.RestaurantID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, g)
}

type groupStatusRequest struct {
	Status string `json:"status" validate:"required,in=browsing,checkout,delivered"`
}

func (c *GroupController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body groupStatusRequest
	if !decode(w, r, &body) {
		return
	}
	g, err := c.groups.UpdateStatus(r.Context(), participant(r), router.Param(r, "id"), models.GroupStatus(body.Status))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, g)
}

type deliveryETARequest struct {
	DeliveryETA time.Time `json:"deliveryEta"`
}

func (b deliveryETARequest) check(w http.ResponseWriter) bool {
	if b.DeliveryETA.IsZero() {
		response.ValidationError(w, map[string]string{"deliveryEta": "The deliveryEta field is required."})
		return false
	}
	return true
}

func (c *GroupController) SetDeliveryETA(w http.ResponseWriter, r *http.Request) {
	var body deliveryETARequest
	if !decode(w, r, &body) || !body.check(w) {
		return
	}
	g, err := c.groups.SetDeliveryETA(r.Context(), participant(r), router.Param(r, "id"), body.DeliveryETA)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, g)
}
