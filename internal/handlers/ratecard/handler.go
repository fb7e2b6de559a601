package ratecard

import (
	"cowork/infras/otel"
	"cowork/internal/domains/ratecard/service"
	"cowork/shared/constant"
	gDto "cowork/shared/dto"
	"cowork/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Package
	otel    otel.Otel
}

func New(service service.Package, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/spaces/{spaceID}/packages", func(routerGroup chi.Router) {
		routerGroup.Get("/", handler.GetPackages)
		routerGroup.Get("/{packageID}", handler.GetPackage)
	})
}

// GetPackages lists the active packages of a space.
// @Summary Get packages of a space
// @Tags Package
// @Produce json
// @Param spaceID path string true "Space ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetPackagesResponse]
// @Failure 500 {object} response.Error
// @Router /v1/spaces/{spaceID}/packages [get]
func (handler *Handler) GetPackages(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPackages")
	defer scope.End()

	spaceID := chi.URLParam(r, constant.RequestParamSpaceID)

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	// packages are listed in display order only
	queryParams.SortBy = "name"
	queryParams.SortDir = gDto.SortDirAsc

	packages, err := handler.service.GetBySpace(ctx, spaceID, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("spaceID", spaceID).Msg("failed to get packages")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, packages)
}

// GetPackage retrieves one active package with its rate card.
// @Summary Get a package
// @Tags Package
// @Produce json
// @Param spaceID path string true "Space ID"
// @Param packageID path string true "Package ID"
// @Success 200 {object} response.Data[dto.PackageResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/spaces/{spaceID}/packages/{packageID} [get]
func (handler *Handler) GetPackage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPackage")
	defer scope.End()

	spaceID := chi.URLParam(r, constant.RequestParamSpaceID)
	packageID := chi.URLParam(r, constant.RequestParamPackageID)

	pkg, err := handler.service.Get(ctx, spaceID, packageID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("packageID", packageID).Msg("failed to get package")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, pkg)
}
