package model

import (
	gModel "cowork/shared/model"
)

const (
	TableName  = "packages"
	EntityName = "package"

	FieldID      = "id"
	FieldSpaceID = "space_id"
	FieldActive  = "active"
)

// RateCard is a package's published prices. Any tier may be zero.
type RateCard struct {
	Hourly  gModel.Money `json:"hourly_cents"`
	Daily   gModel.Money `json:"daily_cents"`
	Weekly  gModel.Money `json:"weekly_cents"`
	Monthly gModel.Money `json:"monthly_cents"`
}

type Package struct {
	ID            string       `db:"id"`
	SpaceID       string       `db:"space_id"`
	Name          string       `db:"name"`
	ProviderRef   string       `db:"provider_ref"`
	PricePerHour  gModel.Money `db:"price_per_hour_cents"`
	PricePerDay   gModel.Money `db:"price_per_day_cents"`
	PricePerWeek  gModel.Money `db:"price_per_week_cents"`
	PricePerMonth gModel.Money `db:"price_per_month_cents"`
	Active        bool         `db:"active"`
	gModel.Metadata
}

func (p Package) RateCard() RateCard {
	return RateCard{
		Hourly:  p.PricePerHour,
		Daily:   p.PricePerDay,
		Weekly:  p.PricePerWeek,
		Monthly: p.PricePerMonth,
	}
}
