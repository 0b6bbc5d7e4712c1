package testutils

import (
	"github.com/google/uuid"

	"wikicms/models"
)

func CreateTestArticle() *models.Article {
	return &models.Article{
		ID:      "Test",
		Title:   "Test Article",
		Content: "Test content",
	}
}

// UniqueUsername returns a username no other test will pick
func UniqueUsername() string {
	return "user-" + uuid.New().String()[:8]
}
