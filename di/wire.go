//go:build wireinject
// +build wireinject

package di

import (
	"cowork/config"
	"cowork/infras/kafka"
	"cowork/infras/otel"
	"cowork/infras/postgres"
	"cowork/infras/redis"
	"cowork/infras/stripe"
	"cowork/shared/cache"
	"cowork/transport/http"
	"cowork/transport/http/middleware"
	"cowork/transport/http/router"

	billingRepository "cowork/internal/domains/billing/repository"
	bookingEvent "cowork/internal/domains/booking/event"
	bookingRepository "cowork/internal/domains/booking/repository"
	bookingSchedule "cowork/internal/domains/booking/schedule"
	bookingService "cowork/internal/domains/booking/service"
	bookingHandler "cowork/internal/handlers/booking"

	ratecardRepository "cowork/internal/domains/ratecard/repository"
	ratecardService "cowork/internal/domains/ratecard/service"
	ratecardHandler "cowork/internal/handlers/ratecard"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	kafka.New,
	stripe.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var ratecardDomain = wire.NewSet(
	ratecardRepository.New,
	ratecardService.New,
)

var billingDomain = wire.NewSet(
	billingRepository.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingEvent.New,
	bookingSchedule.New,
	bookingService.New,
)

var domains = wire.NewSet(
	ratecardDomain,
	billingDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	bookingHandler.New,
	ratecardHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
