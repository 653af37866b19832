package dto

import "github.com/erp/seafreight/internal/domain/freight"

// SearchRatesRequest is the body of the rate search and export endpoints.
// Ports are taken as-is so caller metadata survives into echoed rates.
type SearchRatesRequest struct {
	SourcePort      freight.Port     `json:"sourcePort"`
	DestinationPort freight.Port     `json:"destinationPort"`
	Products        []ProductRequest `json:"products" binding:"required,min=1,max=20,dive"`
	DateBegin       int64            `json:"dateBegin" binding:"required,gt=0"`
	DateEnd         int64            `json:"dateEnd" binding:"omitempty,gtefield=DateBegin"`
}

// ProductRequest is one requested container product
type ProductRequest struct {
	Type      string `json:"type" binding:"required,max=64"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=999"`
	Dangerous bool   `json:"dangerous"`
}

// ToQuery converts the request into a domain query
func (r SearchRatesRequest) ToQuery() freight.Query {
	products := make([]freight.Product, len(r.Products))
	for i, p := range r.Products {
		products[i] = freight.Product{
			Type:      freight.ContainerType(p.Type),
			Quantity:  p.Quantity,
			Dangerous: p.Dangerous,
		}
	}
	return freight.Query{
		SourcePort:      r.SourcePort,
		DestinationPort: r.DestinationPort,
		Products:        products,
		DateBegin:       r.DateBegin,
		DateEnd:         r.DateEnd,
	}
}
