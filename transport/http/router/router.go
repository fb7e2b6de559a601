package router

import (
	"cowork/internal/handlers/booking"
	"cowork/internal/handlers/ratecard"

	"github.com/go-chi/chi/v5"
)

const apiPrefix = "/v1"

// mountable is a domain handler that registers its own routes.
type mountable interface {
	Router(router chi.Router)
}

type DomainHandlers struct {
	Booking  booking.Handler
	RateCard ratecard.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}

// SetupRoutes mounts every domain under the versioned API prefix.
func (r *Router) SetupRoutes(router chi.Router) {
	handlers := []mountable{
		&r.DomainHandlers.RateCard,
		&r.DomainHandlers.Booking,
	}

	router.Route(apiPrefix, func(api chi.Router) {
		for _, handler := range handlers {
			handler.Router(api)
		}
	})
}
