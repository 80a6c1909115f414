package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emarket/emarket/internal/application"
	"github.com/emarket/emarket/internal/domain/entity"
	"github.com/emarket/emarket/pkg/response"
)

// ProductHandler exposes the read-only product endpoints.
type ProductHandler struct {
	Catalog *application.CatalogService
}

func NewProductHandler(catalog *application.CatalogService) *ProductHandler {
	return &ProductHandler{Catalog: catalog}
}

// listingJSON is the wire shape of a product. The image URL is resolved
// here so stored blanks never reach a client.
type listingJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	SellerID    string    `json:"sellerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toWire(listings []entity.Listing) []listingJSON {
	out := make([]listingJSON, 0, len(listings))
	for _, l := range listings {
		out = append(out, listingJSON{
			ID:          l.ID,
			Name:        l.Name,
			Description: l.Description,
			Price:       l.Price,
			ImageURL:    l.EffectiveImageURL(),
			SellerID:    l.SellerID,
			CreatedAt:   l.CreatedAt,
		})
	}
	return out
}

// List handles GET /api/products.
func (h *ProductHandler) List(c *gin.Context) {
	listings, err := h.Catalog.ListAll(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Failed to fetch products", err.Error())
		return
	}
	c.JSON(http.StatusOK, toWire(listings))
}

// BySeller handles GET /api/products/seller/:userId. An unknown or empty
// seller returns an empty array.
func (h *ProductHandler) BySeller(c *gin.Context) {
	listings, err := h.Catalog.ListBySeller(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Failed to fetch seller products", err.Error())
		return
	}
	c.JSON(http.StatusOK, toWire(listings))
}

// Search handles GET /api/products/search?q=term.
func (h *ProductHandler) Search(c *gin.Context) {
	listings, err := h.Catalog.SearchListings(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Failed to search products", err.Error())
		return
	}
	c.JSON(http.StatusOK, toWire(listings))
}
