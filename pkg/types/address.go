package types

import "strings"

// Address is the shipping address submitted with an order. The client sends a
// fixed default taken from configuration.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// IsZero reports whether no address fields are set.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.Street) == "" &&
		strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.PostalCode) == "" &&
		strings.TrimSpace(a.Country) == ""
}
