package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"cowork/infras/otel"
	"cowork/infras/postgres"
	"cowork/internal/domains/booking/model"
	"cowork/shared/constant"
	gDto "cowork/shared/dto"
	"cowork/shared/failure"
	gRepo "cowork/shared/repository"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const advisoryLockQuery = "SELECT pg_advisory_xact_lock(hashtext($1))"

type Booking interface {
	Create(ctx context.Context, booking model.Booking) error
	Overlaps(ctx context.Context, booking model.Booking) (bool, error)
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// Create records the booking after checking it does not overlap another confirmed booking
// of the same employee, or of the employer's own bookings when there is no employee.
// Bookings of the same subject are serialized with a transaction-scoped advisory lock.
func (r *repositoryImpl) Create(ctx context.Context, booking model.Booking) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".Create")
	defer scope.End()
	defer scope.TraceIfError(&err)

	err = r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, advisoryLockQuery, conflictSubject(booking)); err != nil {
			return fmt.Errorf("failed to lock booking subject: %w", err)
		}

		if booking.EndDate.Valid {
			overlaps, err := r.ExistTx(ctx, tx, overlapFilter(booking))
			if err != nil {
				return fmt.Errorf("failed to check overlapping bookings: %w", err)
			}

			if overlaps {
				return &model.BookingConflictError{
					EmployeeID: booking.EmployeeID.String,
					StartDate:  booking.StartDate,
					EndDate:    booking.EndDate.Time,
				}
			}
		}

		return r.InsertTx(ctx, tx, booking) //nolint:wrapcheck
	})

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == constant.PqErrorCodeUniqueViolation {
		log.Error().Err(err).Str("idempotencyKey", booking.IdempotencyKey).Msg("booking already recorded")

		return failure.Conflict("booking already recorded for this payment") // nolint:wrapcheck
	}

	return err
}

// Overlaps reports whether a dated booking would collide with a confirmed one.
// Create checks again under the lock, so a false result is advisory only.
func (r *repositoryImpl) Overlaps(ctx context.Context, booking model.Booking) (overlaps bool, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+model.EntityName+".Overlaps")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if !booking.EndDate.Valid {
		return false, nil
	}

	return r.Exist(ctx, overlapFilter(booking)) //nolint:wrapcheck
}

func conflictSubject(booking model.Booking) string {
	if booking.EmployeeID.Valid {
		return model.FieldEmployeeID + constant.CacheSeparator + booking.EmployeeID.String
	}

	return model.FieldEmployerID + constant.CacheSeparator + booking.EmployerID
}

// overlapFilter matches confirmed, dated bookings of the same subject whose range intersects the new one.
func overlapFilter(booking model.Booking) gDto.FilterGroup {
	subject := gDto.Filter{
		Field:    model.FieldEmployeeID,
		Operator: gDto.FilterIsNull,
		Table:    model.TableName,
	}

	if booking.EmployeeID.Valid {
		subject = gDto.Filter{
			Field:    model.FieldEmployeeID,
			Value:    booking.EmployeeID.String,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		}
	}

	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldEmployerID,
				Value:    booking.EmployerID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			subject,
			gDto.Filter{
				Field:    model.FieldStatus,
				Value:    model.StatusConfirmed,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				ArgName:  "range_end",
				Field:    model.FieldStartDate,
				Value:    booking.EndDate.Time,
				Operator: gDto.FilterOperatorLessEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				ArgName:  "range_start",
				Field:    model.FieldEndDate,
				Value:    booking.StartDate,
				Operator: gDto.FilterOperatorGreaterEq,
				Table:    model.TableName,
			},
		},
	}
}
