package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"cowork/infras/otel"
	"cowork/infras/postgres"
	"cowork/internal/domains/billing/model"
	"cowork/shared/constant"
	gRepo "cowork/shared/repository"
	"fmt"
)

type Profile interface {
	Upsert(ctx context.Context, profile model.Profile) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Profile]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Profile {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Profile](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

// Upsert keeps one profile per employer, replacing the previous details.
func (r *repositoryImpl) Upsert(ctx context.Context, profile model.Profile) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".Upsert")
	defer scope.End()

	if err := r.Repository.Upsert(ctx, profile, model.FieldEmployerID); err != nil {
		return fmt.Errorf("failed to upsert billing profile: %w", err)
	}

	return nil
}
