package dto

import (
	"encoding/json"
	"time"
)

const (
	captureDateLayout = "02-01-2006"
	captureTimeLayout = "15:04"
)

// CaptureInfo is the gallery view of a stored capture.
type CaptureInfo struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	TimeOfDay time.Time `json:"timeOfDay"`
	ProductID int       `json:"productId"`
	Size      int64     `json:"size"`
	URL       string    `json:"url"`
}

// MarshalJSON customizes JSON output for CaptureInfo to format date and time-of-day.
func (c CaptureInfo) MarshalJSON() ([]byte, error) {
	type Alias CaptureInfo
	return json.Marshal(&struct {
		Date      string `json:"date"`
		TimeOfDay string `json:"timeOfDay"`
		Alias
	}{
		Date:      c.Date.Format(captureDateLayout),
		TimeOfDay: c.TimeOfDay.Format(captureTimeLayout),
		Alias:     (Alias)(c),
	})
}

// UnmarshalJSON reads the format written by MarshalJSON. Date and TimeOfDay are
// parsed in the local zone; empty values leave them zero.
func (c *CaptureInfo) UnmarshalJSON(data []byte) error {
	type Alias CaptureInfo
	aux := &struct {
		Date      string `json:"date"`
		TimeOfDay string `json:"timeOfDay"`
		*Alias
	}{Alias: (*Alias)(c)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	c.Date, c.TimeOfDay = time.Time{}, time.Time{}
	if aux.Date != "" {
		d, err := time.ParseInLocation(captureDateLayout, aux.Date, time.Local)
		if err != nil {
			return err
		}
		c.Date = d
	}
	if aux.TimeOfDay != "" {
		tod, err := time.ParseInLocation(captureTimeLayout, aux.TimeOfDay, time.Local)
		if err != nil {
			return err
		}
		c.TimeOfDay = tod
	}
	return nil
}
