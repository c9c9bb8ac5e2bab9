package routing

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/timeos/framework/container"
	gohttp "github.com/km-arc/timeos/http"
)

// ServiceInfo is one row of the /services listing.
type ServiceInfo struct {
	ID           string          `json:"id"`
	State        container.State `json:"state"`
	Dependencies []string        `json:"dependencies"`
}

// Health mounts the container status routes:
//
//	GET  /health               → HealthRecord, 200 healthy or 503 degraded
//	GET  /services             → registered identifiers with state
//	GET  /services/{id}        → one identifier, 404 when unknown
//	POST /services/{id}/reset  → Reset(id), 204 or 409 while resolving
//	GET  /metrics              → Prometheus exposition of gatherer
//
// Responses are never cached. A nil gatherer skips /metrics.
func Health(r *Router, c *container.Container, gatherer prometheus.Gatherer) {
	r.Group(func(g *Router) {
		g.Middleware(middleware.NoCache)

		g.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			res := gohttp.NewResponse(w)
			record := c.HealthStatus()
			if !record.Healthy() {
				res.ServiceUnavailable(record)
				return
			}
			res.JSON(http.StatusOK, record)
		})

		g.Prefix("/services", func(s *Router) {
			s.Get("/", func(w http.ResponseWriter, _ *http.Request) {
				ids := c.Identifiers()
				out := make([]ServiceInfo, 0, len(ids))
				for _, id := range ids {
					out = append(out, serviceInfo(c, id))
				}
				gohttp.NewResponse(w).Success(out)
			})

			s.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
				res := gohttp.NewResponse(w)
				id := Param(req, "id")
				if !c.Bound(id) {
					res.NotFound("no service registered for " + id)
					return
				}
				res.Success(serviceInfo(c, id))
			})

			s.Post("/{id}/reset", func(w http.ResponseWriter, req *http.Request) {
				res := gohttp.NewResponse(w)
				id := Param(req, "id")
				err := c.Reset(id)
				var notFound *container.ServiceNotFoundError
				var regErr *container.RegistrationError
				switch {
				case err == nil:
					res.NoContent()
				case errors.As(err, &notFound):
					res.NotFound("no service registered for " + id)
				case errors.As(err, &regErr):
					res.Error(http.StatusConflict, regErr.Error())
				default:
					res.ServerError(err.Error())
				}
			})
		})

		if gatherer != nil {
			g.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
		}
	})
}

func serviceInfo(c *container.Container, id string) ServiceInfo {
	state, _ := c.State(id)
	deps := c.Dependencies(id)
	if deps == nil {
		deps = []string{}
	}
	return ServiceInfo{ID: id, State: state, Dependencies: deps}
}
