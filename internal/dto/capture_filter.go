// CaptureFilters describe user-provided filters to narrow the capture list.
package dto

import "time"

type CaptureFilters struct {
	ProductID  int
	SessionID  string
	DateAfter  time.Time
	DateBefore time.Time
	Limit      int
	Offset     int
}
