package api

// MessageResponse is used by endpoints that only report a status.
type MessageResponse struct {
	Message string `json:"message"`
}
