package models

// Article is a titled piece of wiki content addressed by ID
type Article struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
