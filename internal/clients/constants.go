package clients

import "time"

const (
	FEDDIT_SUBFEDDITS_PATH = "/api/v1/subfeddits/"
	FEDDIT_COMMENTS_PATH   = "/api/v1/comments/"
	DEFAULT_TIMEOUT        = 20 * time.Second
	USER_AGENT             = "polarity-client/1.0 (+https://github.com/spacesedan/polarity)"
)
