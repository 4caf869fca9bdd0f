// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package catalog

// Product is a single catalog entry. Products are reference data owned by
// the external catalog of record; this service never mutates them.
type Product struct {
	// ID is the stable unique product identifier.
	ID int `json:"id" validate:"required,gt=0"`

	// Name is the display name.
	Name string `json:"name" validate:"required"`

	// Description is the long-form product description.
	Description string `json:"description,omitempty"`

	// Price is the unit price. Always >= 0.
	Price float64 `json:"price" validate:"gte=0"`

	// Category is the optional category label.
	Category string `json:"category,omitempty"`

	// Image is the image reference (URL or asset key).
	Image string `json:"image,omitempty"`

	// Discount is the discount percentage (0-100).
	Discount float64 `json:"discount,omitempty" validate:"gte=0,lte=100"`

	// IsNew flags recently added products.
	IsNew bool `json:"is_new,omitempty"`

	// Rating is the average review rating (0-5).
	Rating float64 `json:"rating,omitempty" validate:"gte=0,lte=5"`

	// Trending is a precomputed popularity signal from the catalog of
	// record, used by the trending fallback strategy.
	Trending bool `json:"trending,omitempty"`
}
