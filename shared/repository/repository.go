package repository

import (
	"context"
	"cowork/infras/otel"
	"cowork/infras/postgres"
	"cowork/shared/constant"
	"cowork/shared/dto"
	"cowork/shared/logger"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
)

var errRequiredFilter = errors.New("required filter")

// protectedColumns survive an upsert untouched.
var protectedColumns = []string{constant.FieldCreatedAt, constant.FieldCreatedBy}

type execer interface {
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
}

type preparer interface {
	PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
}

// Repository is the generic table access embedded by domain repositories.
// Columns come from the db tags of T, including embedded structs.
type Repository[T any] struct {
	db            *postgres.Connection
	otel          otel.Otel
	table         string
	entity        string
	primaryColumn string
	columns       []string
}

func NewRepository[T any](entityName, tableName, primaryColumn string, dbConnection *postgres.Connection, otl otel.Otel) Repository[T] {
	var zero T

	return Repository[T]{
		db:            dbConnection,
		otel:          otl,
		table:         tableName,
		entity:        entityName,
		primaryColumn: primaryColumn,
		columns:       dbColumns(reflect.TypeOf(zero)),
	}
}

func (repo *Repository[T]) newScope(ctx context.Context, operation string) (context.Context, otel.Scope) {
	return repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+"."+repo.entity+"."+operation)
}

func (repo *Repository[T]) insertQuery() string {
	placeholders := make([]string, len(repo.columns))
	for idx, col := range repo.columns {
		placeholders[idx] = ":" + col
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", repo.table, strings.Join(repo.columns, ", "), strings.Join(placeholders, ", "))
}

// InsertTx writes model inside sqltx.
func (repo *Repository[T]) InsertTx(ctx context.Context, sqltx *sqlx.Tx, model T) (err error) {
	ctx, scope := repo.newScope(ctx, "InsertTx")
	defer scope.End()
	defer scope.TraceIfError(&err)

	return repo.exec(ctx, sqltx, "insert", repo.insertQuery(), model)
}

// Upsert inserts model or, when a row with the same conflict columns exists,
// overwrites every other column except the creation metadata.
func (repo *Repository[T]) Upsert(ctx context.Context, model T, conflictColumns ...string) (err error) {
	ctx, scope := repo.newScope(ctx, "Upsert")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if len(conflictColumns) == 0 {
		conflictColumns = []string{repo.primaryColumn}
	}

	updates := []string{}

	for _, col := range repo.columns {
		if col == repo.primaryColumn || slices.Contains(protectedColumns, col) || slices.Contains(conflictColumns, col) {
			continue
		}

		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	query := fmt.Sprintf("%s ON CONFLICT (%s) DO UPDATE SET %s", repo.insertQuery(), strings.Join(conflictColumns, ", "), strings.Join(updates, ", "))

	return repo.exec(ctx, repo.db.Write, "upsert", query, model)
}

// Exist reports whether any row matches filter. An empty filter is rejected.
func (repo *Repository[T]) Exist(ctx context.Context, filter dto.FilterGroup) (exist bool, err error) {
	ctx, scope := repo.newScope(ctx, "Exist")
	defer scope.End()
	defer scope.TraceIfError(&err)

	return repo.exist(ctx, repo.db.Read, filter)
}

// ExistTx runs the existence check inside sqltx so it sees rows written or locked by it.
func (repo *Repository[T]) ExistTx(ctx context.Context, sqltx *sqlx.Tx, filter dto.FilterGroup) (exist bool, err error) {
	ctx, scope := repo.newScope(ctx, "ExistTx")
	defer scope.End()
	defer scope.TraceIfError(&err)

	return repo.exist(ctx, sqltx, filter)
}

func (repo *Repository[T]) exist(ctx context.Context, prep preparer, filter dto.FilterGroup) (bool, error) {
	where, args := BuildWhereClause(filter)
	if where == "" {
		return false, errRequiredFilter
	}

	var exist bool

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s %s)", repo.table, where)

	err := repo.query(ctx, prep, "check exist", query, args, func(stmt *sqlx.NamedStmt) error {
		return stmt.GetContext(ctx, &exist, args)
	})

	return exist, err
}

// Get returns the first matching row, or the zero value when nothing matches.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (model T, err error) {
	ctx, scope := repo.newScope(ctx, "Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	where, args := BuildWhereClause(filter)
	query := fmt.Sprintf("SELECT %s FROM %s %s", repo.selectList(columns), repo.table, where)

	err = repo.query(ctx, repo.db.Read, "get", query, args, func(stmt *sqlx.NamedStmt) error {
		return stmt.GetContext(ctx, &model, args)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return model, nil
	}

	return model, err
}

func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) (models []T, err error) {
	ctx, scope := repo.newScope(ctx, "GetAll")
	defer scope.End()
	defer scope.TraceIfError(&err)

	where, args := BuildWhereClause(filter)
	clauses := []string{fmt.Sprintf("SELECT %s FROM %s %s", repo.selectList(columns), repo.table, where)}

	if params.SortBy != "" && params.SortDir != "" {
		clauses = append(clauses, fmt.Sprintf("ORDER BY %s.%s %s", repo.table, params.SortBy, params.SortDir))
	}

	if params.Limit > 0 {
		args["limit"] = params.Limit
		clauses = append(clauses, "LIMIT :limit")

		if params.Page > 0 {
			args["offset"] = (params.Page - 1) * params.Limit
			clauses = append(clauses, "OFFSET :offset")
		}
	}

	err = repo.query(ctx, repo.db.Read, "get all", strings.Join(clauses, " "), args, func(stmt *sqlx.NamedStmt) error {
		return stmt.SelectContext(ctx, &models, args)
	})

	return models, err
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (count int, err error) {
	ctx, scope := repo.newScope(ctx, "Count")
	defer scope.End()
	defer scope.TraceIfError(&err)

	where, args := BuildWhereClause(filter)
	query := fmt.Sprintf("SELECT COUNT(%s.%s) FROM %s %s", repo.table, repo.primaryColumn, repo.table, where)

	err = repo.query(ctx, repo.db.Read, "count", query, args, func(stmt *sqlx.NamedStmt) error {
		return stmt.GetContext(ctx, &count, args)
	})

	return count, err
}

func (repo *Repository[T]) exec(ctx context.Context, exec execer, action, query string, arg any) error {
	_, scope := repo.newScope(ctx, action)
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := exec.NamedExecContext(ctx, query, arg); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to %s data (%s): %w", action, repo.entity, err)
	}

	return nil
}

// query prepares a named statement and hands it to scan. sql.ErrNoRows is returned unwrapped
// and unlogged so callers can treat it as an empty result.
func (repo *Repository[T]) query(ctx context.Context, prep preparer, action, query string, args map[string]any, scan func(*sqlx.NamedStmt) error) error {
	_, scope := repo.newScope(ctx, action)
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	stmt, err := prep.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to prepare statement (%s): %w", repo.entity, err)
	}
	defer stmt.Close()

	err = scan(stmt)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return sql.ErrNoRows
	default:
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to %s data (%s): %w", action, repo.entity, err)
	}
}

// selectList qualifies the requested columns, or every known column when none are given.
func (repo *Repository[T]) selectList(columns []string) string {
	selected := []string{}

	for _, col := range repo.columns {
		if len(columns) > 0 && !slices.Contains(columns, col) {
			continue
		}

		selected = append(selected, repo.table+"."+col)
	}

	return strings.Join(selected, ", ")
}

// BuildWhereClause renders filter as a WHERE clause; an empty filter yields no clause and no args.
func BuildWhereClause(filter dto.FilterGroup) (string, map[string]any) {
	where, args := filter.GetWhereClause()
	if where == "" {
		return "", map[string]any{}
	}

	return "WHERE " + where, args
}

func dbColumns(reflectType reflect.Type) []string {
	columns := []string{}

	for i := range reflectType.NumField() {
		field := reflectType.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			columns = append(columns, dbColumns(field.Type)...)

			continue
		}

		if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
			columns = append(columns, tag)
		}
	}

	return columns
}
