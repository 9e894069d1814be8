package service

import (
	"fmt"

	"tetplan/config"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled 邮件服务是否启用
func (s *EmailService) Enabled() bool {
	return s.cfg.Enabled
}

// SendBudgetOverrunAlert 发送预算超支提醒邮件
// 购物项写入后若预算花费汇总超过分配额，由调用方异步触发
func (s *EmailService) SendBudgetOverrunAlert(toEmail, username, budgetName string, allocated, summary float64) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用")
	}
	if toEmail == "" {
		return fmt.Errorf("用户未设置邮箱")
	}

	subject := "【年货计划】预算超支提醒"
	body := s.generateOverrunEmailBody(username, budgetName, allocated, summary)

	return s.sendEmail(toEmail, subject, body)
}

// generateOverrunEmailBody 生成超支提醒邮件内容
func (s *EmailService) generateOverrunEmailBody(username, budgetName string, allocated, summary float64) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #dc2626, #b91c1c); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .amount-box { background: linear-gradient(135deg, #fef2f2, #fee2e2); border: 2px dashed #dc2626; border-radius: 12px; padding: 30px; text-align: center; margin: 30px 0; }
        .amount { font-size: 28px; font-weight: bold; color: #b91c1c; }
        .warning { background: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 20px 0; border-radius: 4px; }
        .warning p { margin: 0; color: #856404; font-size: 14px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🧧 年货计划</h1>
        </div>
        <div class="content">
            <p>尊敬的 <strong>%s</strong>，您好！</p>
            <p>您的预算「<strong>%s</strong>」已经超支：</p>
            <div class="amount-box">
                <span class="amount">已花费 ￥%.2f / 预算 ￥%.2f</span>
            </div>
            <div class="warning">
                <p>⚠️ 超支金额 ￥%.2f，请及时调整购物清单或预算分配额。</p>
            </div>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
            <p>© 年货计划 - 您的春节采购助手</p>
        </div>
    </div>
</body>
</html>
`, username, budgetName, summary, allocated, summary-allocated)
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}
