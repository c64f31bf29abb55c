package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/gopersonal/storefront/pkg/types"
)

// apiProduct mirrors the catalog wire format.
type apiProduct struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      *struct {
		Rate  float64 `json:"rate"`
		Count int     `json:"count"`
	} `json:"rating"`
}

func (p apiProduct) toProduct() types.Product {
	product := types.Product{
		ID:          p.ID,
		Name:        p.Title,
		Price:       decimal.NewFromFloat(p.Price),
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
	}
	if p.Rating != nil {
		product.Rating = &types.Rating{Rate: p.Rating.Rate, Count: p.Rating.Count}
	}
	return product
}

// ListProducts fetches the whole catalog. Public, no bearer token.
func (c *Client) ListProducts(ctx context.Context) ([]types.Product, error) {
	var raw []apiProduct
	if err := c.call(ctx, http.MethodGet, c.catalogEndpoint("/products"), nil, false, &raw); err != nil {
		c.logg.Error(ctx, "list products failed", err)
		return nil, err
	}

	products := make([]types.Product, 0, len(raw))
	for _, p := range raw {
		products = append(products, p.toProduct())
	}
	return products, nil
}

// GetProduct fetches a single catalog entry by id.
func (c *Client) GetProduct(ctx context.Context, id int) (*types.Product, error) {
	var raw apiProduct
	url := c.catalogEndpoint(fmt.Sprintf("/products/%d", id))
	if err := c.call(ctx, http.MethodGet, url, nil, false, &raw); err != nil {
		c.logg.Error(c.logg.WithField(ctx, "product_id", id), "get product failed", err)
		return nil, err
	}
	product := raw.toProduct()
	return &product, nil
}

// ListCategories fetches the category labels.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.call(ctx, http.MethodGet, c.catalogEndpoint("/products/categories"), nil, false, &categories); err != nil {
		c.logg.Error(ctx, "list categories failed", err)
		return nil, err
	}
	return categories, nil
}
