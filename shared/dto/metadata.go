package dto

import (
	"cowork/shared/constant"
	"cowork/shared/model"
	"cowork/shared/timezone"
	"time"
)

// Metadata is the audit trail returned with every record. Timestamps are in
// the application timezone; unset ones are left empty.
type Metadata struct {
	CreatedAt  string `json:"created_at,omitempty"`
	ModifiedAt string `json:"modified_at,omitempty"`
	CreatedBy  string `json:"created_by,omitempty"`
	ModifiedBy string `json:"modified_by,omitempty"`
}

func (m *Metadata) FromModel(source model.Metadata) {
	*m = Metadata{
		CreatedAt:  timestamp(source.CreatedAt),
		ModifiedAt: timestamp(source.ModifiedAt),
		CreatedBy:  source.CreatedBy,
		ModifiedBy: source.ModifiedBy,
	}
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return constant.Empty
	}

	return timezone.Format(t, constant.DateFormat)
}
