package booking

import (
	"cowork/infras/otel"
	"cowork/internal/domains/booking/model"
	"cowork/internal/domains/booking/model/dto"
	"cowork/internal/domains/booking/service"
	"cowork/shared/constant"
	gDto "cowork/shared/dto"
	"cowork/shared/failure"
	"cowork/shared/logger"
	"cowork/shared/validator"
	"cowork/transport/http/response"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

var sortableFields = []string{
	constant.DefaultValueSortBy,
	model.FieldStartDate,
	"total_amount_cents",
}

type Handler struct {
	service service.Booking
	otel    otel.Otel
}

func New(service service.Booking, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/bookings", func(routerGroup chi.Router) {
		routerGroup.Post("/schedule", handler.GenerateSchedule)
		routerGroup.Post("/quote", handler.QuoteBooking)
		routerGroup.Post("/", handler.SubmitBooking)
		routerGroup.Get("/", handler.GetBookings)
		routerGroup.Get("/{id}", handler.GetBookingByID)
	})
}

// GenerateSchedule turns a date selection into schedule fields.
// @Summary Generate a schedule
// @Description Build the dates, duration and preview for one of the four schedule kinds.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.ScheduleRequest true "Schedule Request"
// @Success 200 {object} response.Data[dto.ScheduleResponse]
// @Failure 400 {object} response.Error
// @Router /v1/bookings/schedule [post]
func (handler *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GenerateSchedule")
	defer scope.End()

	req := dto.ScheduleRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Schedule(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to generate schedule")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// QuoteBooking prices a configuration without charging anything.
// @Summary Quote a booking
// @Description Price a booking configuration and report the payment flow it would use.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body dto.ConfigurationRequest true "Configuration Request"
// @Success 200 {object} response.Data[dto.QuoteResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Error
// @Router /v1/bookings/quote [post]
func (handler *Handler) QuoteBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".QuoteBooking")
	defer scope.End()

	req := dto.ConfigurationRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Quote(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to quote booking")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// SubmitBooking pays for and records a booking.
// @Summary Submit a booking
// @Description Charge the card or start the subscription and record the booking.
// @Tags Booking
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Employer ID"
// @Param request body dto.SubmitRequest true "Submit Request"
// @Success 201 {object} response.Data[dto.BookingResponse]
// @Failure 400 {object} response.Error
// @Failure 402 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 502 {object} response.Error
// @Router /v1/bookings [post]
func (handler *Handler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SubmitBooking")
	defer scope.End()

	req := dto.SubmitRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Submit(ctx, req)
	if err != nil {
		scope.TraceError(err)

		if model.IsPostPaymentFailure(err) {
			logger.Reconciliation(ctx).Err(err).Msg("booking submission needs reconciliation")
		} else {
			log.Error().Err(err).Msg("failed to submit booking")
		}

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Booking " + res.ID + " confirmed for employer " + res.EmployerID)

	response.WithJSON(w, http.StatusCreated, res)
}

// GetBookings lists the bookings of the calling employer.
// @Summary Get bookings
// @Description Retrieve the employer's bookings with pagination.
// @Tags Booking
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Employer ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetBookingsResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings [get]
func (handler *Handler) GetBookings(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookings")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	if !slices.Contains(sortableFields, queryParams.SortBy) {
		err := failure.BadRequestFromString("cannot sort by " + queryParams.SortBy)
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	bookings, err := handler.service.GetAll(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get bookings")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, bookings)
}

// GetBookingByID retrieves one of the employer's bookings.
// @Summary Get a booking by ID
// @Tags Booking
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Employer ID"
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Data[dto.BookingResponse]
// @Failure 401 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/bookings/{id} [get]
func (handler *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetBookingByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	booking, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get booking by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, booking)
}
