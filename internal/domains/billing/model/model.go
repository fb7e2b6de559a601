package model

import (
	gModel "cowork/shared/model"
)

const (
	TableName  = "billing_profiles"
	EntityName = "billing_profile"

	FieldID         = "id"
	FieldEmployerID = "employer_id"
)

// Profile is the employer's invoicing identity. There is at most one per employer.
type Profile struct {
	ID           string `db:"id"`
	EmployerID   string `db:"employer_id"`
	CompanyName  string `db:"company_name"`
	Email        string `db:"billing_email"`
	Phone        string `db:"phone"`
	TaxID        string `db:"tax_id"`
	AddressLine1 string `db:"address_line1"`
	AddressLine2 string `db:"address_line2"`
	City         string `db:"city"`
	State        string `db:"state"`
	PostalCode   string `db:"postal_code"`
	Country      string `db:"country"`
	gModel.Metadata
}
