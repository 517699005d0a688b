// CapturesData is a paginated response payload for the capture gallery.
package dto

type CapturesData struct {
	Captures    []CaptureInfo `json:"captures"`
	Length      int           `json:"length"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	Limit       int           `json:"pageSize"`
}
