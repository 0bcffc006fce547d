package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smslease/smslease/internal/server/http/dto"
)

// CatalogHandler serves the leasable countries and services.
type CatalogHandler struct {
	facade CatalogFacade
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(facade CatalogFacade) *CatalogHandler {
	return &CatalogHandler{facade: facade}
}

// Countries handles GET /api/countries.
func (h *CatalogHandler) Countries(c *gin.Context) {
	countries, err := h.facade.Countries(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	response := make([]dto.CountryResponse, 0, len(countries))
	for _, country := range countries {
		response = append(response, dto.CountryResponse{
			ID:        country.ID,
			Name:      country.Name,
			Code:      country.Code,
			Price:     country.Price,
			Available: country.Available,
		})
	}
	c.JSON(http.StatusOK, response)
}

// Services handles GET /api/services.
func (h *CatalogHandler) Services(c *gin.Context) {
	services, err := h.facade.Services(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	response := make([]dto.ServiceResponse, 0, len(services))
	for _, service := range services {
		response = append(response, dto.ServiceResponse{
			ID:        service.ID,
			Name:      service.Name,
			Price:     service.Price,
			Available: service.Available,
		})
	}
	c.JSON(http.StatusOK, response)
}
