package service

import (
	"testing"

	"tetplan/config"

	"github.com/stretchr/testify/assert"
)

func newTestEmailService() *EmailService {
	return NewEmailService(&config.EmailConfig{})
}

func TestGenerateOverrunEmailBody(t *testing.T) {
	s := newTestEmailService()
	body := s.generateOverrunEmailBody("张三", "年货采购", 1000, 1250.5)
	assert.Contains(t, body, "张三")
	assert.Contains(t, body, "年货采购")
	assert.Contains(t, body, "已花费 ￥1250.50 / 预算 ￥1000.00")
	assert.Contains(t, body, "超支金额 ￥250.50")
}

func TestSendBudgetOverrunAlert_Disabled(t *testing.T) {
	s := newTestEmailService()
	err := s.SendBudgetOverrunAlert("a@b.com", "张三", "年货采购", 1000, 1250.5)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "邮件服务未启用")
}

func TestSendBudgetOverrunAlert_NoEmail(t *testing.T) {
	s := NewEmailService(&config.EmailConfig{Enabled: true})
	err := s.SendBudgetOverrunAlert("", "张三", "年货采购", 1000, 1250.5)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "用户未设置邮箱")
}
