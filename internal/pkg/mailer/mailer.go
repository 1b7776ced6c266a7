package mailer

import (
	"errors"
	"fmt"
	"thywilluche/internal/pkg/config"
	"thywilluche/pkg/logger"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/dm"
	"go.uber.org/zap"
)

// Message 一封事务邮件
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Mailer 事务邮件发送
type Mailer interface {
	Send(msg Message) error
}

// DirectMailer 阿里云邮件推送 SingleSendMail
type DirectMailer struct {
	client *dm.Client
	config config.MailConfig
}

func NewDirectMailer(cfg config.MailConfig) (*DirectMailer, error) {
	if cfg.AccessKeyID == "" || cfg.AccountName == "" {
		return nil, errors.New("mail config is missing")
	}

	client, err := dm.NewClientWithAccessKey(cfg.RegionID, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	return &DirectMailer{client: client, config: cfg}, nil
}

func (m *DirectMailer) Send(msg Message) error {
	if msg.To == "" {
		return errors.New("mail recipient is empty")
	}

	request := dm.CreateSingleSendMailRequest()
	request.Scheme = "https"
	request.AccountName = m.config.AccountName
	request.FromAlias = m.config.FromAlias
	request.AddressType = requests.NewInteger(1) // 1: 发信地址
	request.ReplyToAddress = requests.NewBoolean(false)
	request.ToAddress = msg.To
	request.Subject = msg.Subject
	request.HtmlBody = msg.HTMLBody

	resp, err := m.client.SingleSendMail(request)
	if err != nil {
		return fmt.Errorf("single send mail: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("single send mail: status %d", resp.GetHttpStatus())
	}
	return nil
}

// LogMailer 未配置邮件服务时使用，只打印日志 (开发环境)
type LogMailer struct{}

func (LogMailer) Send(msg Message) error {
	logger.Log.Info("[Mail] not configured, message logged only",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

// New 按配置选择实现
func New(cfg config.MailConfig) Mailer {
	m, err := NewDirectMailer(cfg)
	if err != nil {
		logger.Log.Warn("DirectMail disabled, falling back to log mailer", zap.Error(err))
		return LogMailer{}
	}
	return m
}
