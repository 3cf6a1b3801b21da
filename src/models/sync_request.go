package models

// SyncRequest optionally narrows an on-demand sync to an explicit date window.
// Both dates are 8-digit YYYYMMDD strings; empty means "use the default window".
type SyncRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
