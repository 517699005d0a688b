package model

// Product is the read-only summary shown next to the try-on viewport.
type Product struct {
	ID           int     `json:"id"`
	DisplayName  string  `json:"displayName"`
	Price        float64 `json:"price"`
	ThumbnailRef string  `json:"thumbnailRef"`
}
