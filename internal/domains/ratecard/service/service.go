package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Package=MockPackageService

import (
	"context"
	"cowork/config"
	"cowork/infras/otel"
	"cowork/internal/domains/ratecard/model"
	"cowork/internal/domains/ratecard/model/dto"
	"cowork/internal/domains/ratecard/repository"
	"cowork/shared"
	"cowork/shared/cache"
	"cowork/shared/constant"
	gDto "cowork/shared/dto"
	"cowork/shared/failure"
	"fmt"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetPackage    = "package:get"
	cacheGetAllPackage = "package:gets"
)

// Package is the rate source: it resolves the active package a booking is priced against.
type Package interface {
	Get(ctx context.Context, spaceID, packageID string) (dto.PackageResponse, error)
	GetBySpace(ctx context.Context, spaceID string, req gDto.QueryParams) (dto.GetPackagesResponse, error)
	Resolve(ctx context.Context, spaceID, packageID string) (model.Package, error)
}

type serviceImpl struct {
	repo  repository.Package
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Package, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Package {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Get(ctx context.Context, spaceID, packageID string) (res dto.PackageResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	cacheKey := shared.BuildCacheKey(cacheGetPackage, spaceID, packageID)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for package")

		return res, nil
	}

	pkg, err := s.repo.Get(ctx, filterActivePackage(spaceID, packageID))
	if err != nil {
		log.Error().Err(err).Msg("failed to get package")

		return res, fmt.Errorf("failed to get package: %w", err)
	}

	if pkg.ID == constant.Empty {
		return res, failure.NotFound("package not found") // nolint:wrapcheck
	}

	res.FromModel(pkg)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save package to cache")
		}
	}()

	return res, nil
}

// GetBySpace lists the active packages a space offers.
func (s *serviceImpl) GetBySpace(ctx context.Context, spaceID string, req gDto.QueryParams) (res dto.GetPackagesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetBySpace")
	defer scope.End()
	defer scope.TraceIfError(&err)

	filter := filterActiveBySpace(spaceID)
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllPackage, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for packages")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count packages")

		return res, fmt.Errorf("failed to count packages: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get packages")

		return res, fmt.Errorf("failed to get packages: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save packages to cache")
		}
	}()

	return res, nil
}

// Resolve returns the package as the pricing engine consumes it.
func (s *serviceImpl) Resolve(ctx context.Context, spaceID, packageID string) (pkg model.Package, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Resolve")
	defer scope.End()
	defer scope.TraceIfError(&err)

	res, err := s.Get(ctx, spaceID, packageID)
	if err != nil {
		return pkg, err // nolint:wrapcheck
	}

	return res.ToModel(), nil
}

func filterActivePackage(spaceID, packageID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldID,
				Value:    packageID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			filterActiveBySpace(spaceID),
		},
	}
}

func filterActiveBySpace(spaceID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldSpaceID,
				Value:    spaceID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldActive,
				Value:    true,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}
}
