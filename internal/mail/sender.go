package mail

import "context"

// Sender 邮件外协接口：投递失败只回报，不重试
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
