package metrics

// RecordArticleChange counts an article mutation
func RecordArticleChange(operation string) {
	ArticleChangesTotal.WithLabelValues(operation).Inc()
}

// RecordAuthAttempt counts a login or registration attempt.
// Action is "login" or "register".
func RecordAuthAttempt(action string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	AuthAttemptsTotal.WithLabelValues(action, result).Inc()
}

// UpdateArticlesTotal sets the stored-articles gauge
func UpdateArticlesTotal(count int) {
	ArticlesTotal.Set(float64(count))
}

// UpdateUsersTotal sets the registered-users gauge
func UpdateUsersTotal(count int) {
	UsersTotal.Set(float64(count))
}
