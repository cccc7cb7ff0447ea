package models

import "encoding/json"

type Subfeddit struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type SubfedditListResponse struct {
	Skip       int         `json:"skip"`
	Limit      int         `json:"limit"`
	Subfeddits []Subfeddit `json:"subfeddits"`
}

// RawComment is a comment as returned by the upstream. ID is kept as raw JSON
// so it is echoed back exactly as the upstream sent it.
type RawComment struct {
	ID        json.RawMessage `json:"id"`
	Username  string          `json:"username,omitempty"`
	Text      string          `json:"text"`
	CreatedAt int64           `json:"created_at"`
}

type CommentListResponse struct {
	SubfedditID int          `json:"subfeddit_id"`
	Skip        int          `json:"skip"`
	Limit       int          `json:"limit"`
	Comments    []RawComment `json:"comments"`
}
