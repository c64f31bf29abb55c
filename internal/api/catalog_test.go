package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProductsMapsCatalogShape(t *testing.T) {
	var capturedURL string
	client := newTestClient(t, "", func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		assert.Empty(t, req.Header.Get("Authorization"), "catalog is public")
		return jsonResponse(http.StatusOK, `[
			{"id":1,"title":"Backpack","price":109.95,"description":"Fits laptops","category":"men's clothing","image":"http://img.test/1.png","rating":{"rate":3.9,"count":120}},
			{"id":2,"title":"T-Shirt","price":22.3,"description":"Slim fit","category":"men's clothing","image":"http://img.test/2.png"}
		]`), nil
	})

	products, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "http://catalog.test/products", capturedURL)
	assert.Equal(t, 1, products[0].ID)
	assert.Equal(t, "Backpack", products[0].Name, "title maps to name")
	assert.True(t, products[0].Price.Equal(decimal.NewFromFloat(109.95)))
	require.NotNil(t, products[0].Rating)
	assert.Equal(t, 3.9, products[0].Rating.Rate)
	assert.Equal(t, 120, products[0].Rating.Count)
	assert.Nil(t, products[1].Rating, "rating is optional")
}

func TestGetProductByID(t *testing.T) {
	var capturedURL string
	client := newTestClient(t, "", func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return jsonResponse(http.StatusOK,
			`{"id":7,"title":"Bracelet","price":9.99,"description":"Gold","category":"jewelery","image":"http://img.test/7.png"}`), nil
	})

	product, err := client.GetProduct(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "http://catalog.test/products/7", capturedURL)
	assert.Equal(t, "Bracelet", product.Name)
}

func TestListCategories(t *testing.T) {
	client := newTestClient(t, "", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "http://catalog.test/products/categories", req.URL.String())
		return jsonResponse(http.StatusOK, `["electronics","jewelery"]`), nil
	})

	categories, err := client.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"electronics", "jewelery"}, categories)
}
