package routes

import (
	"net/http"

	"github.com/shashiranjanraj/groupcart/app/controllers"
	"github.com/shashiranjanraj/groupcart/pkg/auth"
	"github.com/shashiranjanraj/groupcart/pkg/metrics"
	"github.com/shashiranjanraj/groupcart/pkg/middleware"
	"github.com/shashiranjanraj/groupcart/pkg/router"
)

// Controllers is everything the route table dispatches to.
type Controllers struct {
	Groups      *controllers.GroupController
	Cart        *controllers.CartController
	Checkout    *controllers.CheckoutController
	Invoices    *controllers.InvoiceController
	Orders      *controllers.OrderController
	Payments    *controllers.PaymentController
	Restaurants *controllers.RestaurantController
	Realtime    *controllers.RealtimeController
	GraphQL     *controllers.GraphQLController
	Health      *controllers.HealthController
}

// RegisterAPI mounts the HTTP surface. Reads are public; anything that
// edits a group needs the participant token handed out on create/join.
func RegisterAPI(r *router.Router, c Controllers, tokens *auth.Tokens) {
	member := middleware.Participant(tokens)

	r.Get("/healthz", "health", c.Health.Show)
	r.Handle(http.MethodGet, "/metrics", "metrics", metrics.Handler())
	r.Get("/ws/groups/{id}", "realtime.connect", c.Realtime.Connect, member)

	api := r.Group("/api")

	api.Get("/restaurants", "restaurants.index", c.Restaurants.Index)
	api.Get("/restaurants/{id}", "restaurants.show", c.Restaurants.Show)

	api.Post("/groups", "groups.store", c.Groups.Store)
	api.Post("/groups/join", "groups.join", c.Groups.Join)
	api.Get("/groups/{id}", "groups.show", c.Groups.Show)
	api.Get("/groups/{id}/members", "groups.members", c.Groups.Members)
	api.Get("/groups/{id}/members/{email}", "groups.member", c.Groups.Member)
	api.Get("/groups/{id}/cart", "cart.index", c.Cart.Index)
	api.Get("/groups/{id}/order", "orders.by_group", c.Orders.ByGroup)

	api.Post("/checkout", "checkout.store", c.Checkout.Store, middleware.OptionalParticipant(tokens))
	api.Post("/invoices/send", "invoices.send", c.Invoices.Send)

	api.Get("/orders/{id}", "orders.show", c.Orders.Show)

	api.Handle(http.MethodGet, "/graphql", "graphql.get", http.HandlerFunc(c.GraphQL.Query))
	api.Post("/graphql", "graphql.post", c.GraphQL.Query)

	members := api.Group("", member)
	members.Put("/groups/{id}/restaurant", "groups.restaurant", c.Groups.SelectRestaurant)
	members.Patch("/groups/{id}/status", "groups.status", c.Groups.UpdateStatus)
	members.Put("/groups/{id}/delivery-eta", "groups.delivery_eta", c.Groups.SetDeliveryETA)

	members.Post("/groups/{id}/cart", "cart.store", c.Cart.Store)
	members.Delete("/groups/{id}/cart", "cart.clear", c.Cart.Clear)
	members.Patch("/cart/{item}", "cart.update", c.Cart.Update)
	members.Delete("/cart/{item}", "cart.destroy", c.Cart.Destroy)

	members.Get("/groups/{id}/payment", "payment.show", c.Payments.Show)
	members.Put("/groups/{id}/payment", "payment.handle", c.Payments.SetHandle)

	members.Patch("/orders/{id}/status", "orders.status", c.Orders.UpdateStatus)
	members.Put("/orders/{id}/delivery-eta", "orders.delivery_eta", c.Orders.SetDeliveryETA)
	members.Get("/orders/{id}/invoice.pdf", "invoices.pdf", c.Invoices.PDF)
}
