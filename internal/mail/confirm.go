package mail

import "fmt"

const ConfirmSubject = "Confirm your email"

// ConfirmURL 确认链接把 userId 和 token 带在 query 上
func ConfirmURL(baseURL, userID, token string) string {
	return fmt.Sprintf("%s/api/v1/auth/confirm?userId=%s&token=%s", baseURL, userID, token)
}

func ConfirmBody(url string) string {
	return fmt.Sprintf("Please confirm your account by <a href='%s'>clicking here</a>.", url)
}
