package saavn

import "encoding/json"

// searchResponse is the JSON response for /api/search/songs. Results are
// kept raw and decoded leniently.
type searchResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Total   int             `json:"total"`
		Results json.RawMessage `json:"results"`
	} `json:"data"`
	Message string `json:"message"`
}
