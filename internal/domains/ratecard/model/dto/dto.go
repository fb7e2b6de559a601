package dto

import (
	"cowork/internal/domains/ratecard/model"
	"cowork/shared"
	gDto "cowork/shared/dto"
)

type PackageResponse struct {
	ID          string         `json:"id"`
	SpaceID     string         `json:"space_id"`
	Name        string         `json:"name"`
	ProviderRef string         `json:"provider_ref"`
	Rates       model.RateCard `json:"rates"`
	Active      bool           `json:"active"`
	gDto.Metadata
}

func (r *PackageResponse) FromModel(pkg model.Package) {
	r.ID = pkg.ID
	r.SpaceID = pkg.SpaceID
	r.Name = pkg.Name
	r.ProviderRef = pkg.ProviderRef
	r.Rates = pkg.RateCard()
	r.Active = pkg.Active
	r.Metadata.FromModel(pkg.Metadata)
}

// ToModel rebuilds the package from a cached response.
func (r *PackageResponse) ToModel() model.Package {
	return model.Package{
		ID:            r.ID,
		SpaceID:       r.SpaceID,
		Name:          r.Name,
		ProviderRef:   r.ProviderRef,
		PricePerHour:  r.Rates.Hourly,
		PricePerDay:   r.Rates.Daily,
		PricePerWeek:  r.Rates.Weekly,
		PricePerMonth: r.Rates.Monthly,
		Active:        r.Active,
	}
}

type GetPackagesResponse struct {
	Packages  []PackageResponse `json:"packages"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetPackagesResponse) FromModels(models []model.Package, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Packages = make([]PackageResponse, len(models))
	for i, mod := range models {
		r.Packages[i].FromModel(mod)
	}
}
