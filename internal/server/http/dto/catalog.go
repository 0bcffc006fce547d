package dto

// CountryResponse describes a leasable numbering region.
type CountryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Price     int64  `json:"price"`
	Available bool   `json:"available"`
}

// ServiceResponse describes a target service.
type ServiceResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Available bool   `json:"available"`
}
