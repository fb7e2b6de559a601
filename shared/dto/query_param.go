package dto

import (
	"cowork/shared/constant"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"

	// MaxLimit caps the page size a caller may request.
	MaxLimit = 100
)

type QueryParams struct {
	Page    int    `json:"page"     validate:"omitempty"`
	Limit   int    `json:"limit"    validate:"omitempty"`
	SortBy  string `json:"sort_by"  validate:"omitempty"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

// FromRequest reads paging and sorting from the query string. Malformed values are ignored;
// with withDefaults set, anything still missing takes the listing defaults.
func (q *QueryParams) FromRequest(r *http.Request, withDefaults bool) {
	values := r.URL.Query()

	q.Page = positiveInt(values, constant.RequestParamPage, q.Page)
	q.Limit = min(positiveInt(values, constant.RequestParamLimit, q.Limit), MaxLimit)

	if sortBy := values.Get(constant.RequestParamSortBy); sortBy != "" {
		q.SortBy = sortBy
	}

	switch dir := strings.ToUpper(values.Get(constant.RequestParamSortDir)); dir {
	case SortDirAsc, SortDirDesc:
		q.SortDir = dir
	}

	if withDefaults {
		q.applyDefaults()
	}
}

func (q *QueryParams) applyDefaults() {
	if q.Page == 0 {
		q.Page = constant.DefaultValuePage
	}

	if q.Limit == 0 {
		q.Limit = constant.DefaultValueLimit
	}

	if q.SortBy == "" {
		q.SortBy = constant.DefaultValueSortBy
	}

	if q.SortDir == "" {
		q.SortDir = constant.DefaultValueSortDir
	}
}

func positiveInt(values url.Values, key string, fallback int) int {
	parsed, err := strconv.Atoi(values.Get(key))
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
