package geo

type CreateCountryRequest struct {
	Code string `json:"code" validate:"required,len=2,alpha"`
	Name string `json:"name" validate:"required,max=100"`
}

type CreateRegionRequest struct {
	CountryID int64  `json:"country_id" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required,max=100"`
}

type CreateCityRequest struct {
	RegionID int64  `json:"region_id" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required,max=100"`
}

type RenameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}
