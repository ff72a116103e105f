package types

// MetaResponse is the body of GET /api/meta/{id}.
type MetaResponse struct {
	// Text is the caption of the message, or a placeholder when it has none
	// or could not be fetched.
	Text string `json:"text"`
}
