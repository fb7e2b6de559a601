package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"cowork/infras/otel"
	"cowork/infras/postgres"
	"cowork/internal/domains/ratecard/model"
	gDto "cowork/shared/dto"
	gRepo "cowork/shared/repository"
)

type Package interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Package, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Package, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Package]
}

func New(db *postgres.Connection, otel otel.Otel) Package {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Package](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
