package models

type EEventLogType string

const (
	ArticleCreated EEventLogType = "Article created"
	ArticleUpdated EEventLogType = "Article updated"
	ArticleDeleted EEventLogType = "Article deleted"
	UserRegistered EEventLogType = "User registered"
	UserLoggedIn   EEventLogType = "User logged in"
	UserLoggedOut  EEventLogType = "User logged out"
	LoginFailed    EEventLogType = "Login failed"
)
