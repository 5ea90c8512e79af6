package service

// RecordEvent is the payload broadcast over the WebSocket hub whenever a
// business record is created, updated or deleted.
type RecordEvent struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}
