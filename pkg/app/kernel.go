package app

import (
	"net/http"

	"github.com/shashiranjanraj/groupcart/app/controllers"
	"github.com/shashiranjanraj/groupcart/app/routes"
	"github.com/shashiranjanraj/groupcart/internal/kernel"
	"github.com/shashiranjanraj/groupcart/pkg/router"
)

// Controllers builds one controller per service.
func (a *Application) Controllers() (routes.Controllers, error) {
	gql, err := controllers.NewGraphQLController(a.Groups, a.Orders)
	if err != nil {
		return routes.Controllers{}, err
	}
	return routes.Controllers{
		Groups:      controllers.NewGroupController(a.Groups),
		Cart:        controllers.NewCartController(a.Cart),
		Checkout:    controllers.NewCheckoutController(a.Checkout),
		Invoices:    controllers.NewInvoiceController(a.Invoices),
		Orders:      controllers.NewOrderController(a.Orders),
		Payments:    controllers.NewPaymentController(a.Payments),
		Restaurants: controllers.NewRestaurantController(a.Catalog),
		Realtime:    controllers.NewRealtimeController(a.Hub),
		GraphQL:     gql,
		Health:      controllers.NewHealthController(a.Infra.DB),
	}, nil
}

// Handler returns the HTTP handler with the global middleware stack.
func (a *Application) Handler() (http.Handler, error) {
	c, err := a.Controllers()
	if err != nil {
		return nil, err
	}
	k := kernel.NewHTTPKernel(func(r *router.Router) {
		routes.RegisterAPI(r, c, a.Infra.Tokens)
	})
	return k.Handler(), nil
}
