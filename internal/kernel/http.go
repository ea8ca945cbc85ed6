// Package kernel wraps the application's routes in the global HTTP
// middleware stack.
package kernel

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/groupcart/pkg/metrics"
	"github.com/shashiranjanraj/groupcart/pkg/middleware"
	"github.com/shashiranjanraj/groupcart/pkg/reqid"
	"github.com/shashiranjanraj/groupcart/pkg/router"
)

// Requests allowed per client IP per minute.
const rateLimitPerMinute = 200

type HTTPKernel struct {
	router *router.Router
}

// NewHTTPKernel builds the router, installs the global middleware and
// lets register mount the routes.
func NewHTTPKernel(register func(*router.Router)) *HTTPKernel {
	r := router.New()

	// Outermost first:
	//  1. metrics   total latency, labelled by route pattern
	//  2. reqid     before anything logs
	//  3. logger    one line per request with request_id
	//  4. recovery  turns panics into 500s the logger still sees
	//  5. cors
	//  6. rate limiter
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(rateLimitPerMinute, time.Minute))

	register(r)
	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler {
	return k.router.Handler()
}

func (k *HTTPKernel) Routes() []router.Route {
	return k.router.Routes()
}
