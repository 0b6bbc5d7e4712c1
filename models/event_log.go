package models

import (
	"time"
)

// EventLog records one change to the wiki: an article edit or an account event
type EventLog struct {
	Type        EEventLogType `json:"type"`
	Description string        `json:"description"`
	ArticleID   *string       `json:"article_id,omitempty"`
	UserID      *string       `json:"user_id,omitempty"`
	CreatedAt   *time.Time    `json:"created_at,omitempty"`
}
