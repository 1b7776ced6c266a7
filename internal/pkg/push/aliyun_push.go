package push

import (
	"encoding/json"
	"fmt"
	"thywilluche/internal/pkg/config"
	"thywilluche/pkg/logger"
	"time"
	"unicode/utf8"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/push"
	"go.uber.org/zap"
)

const (
	// 设备离线时保留 3 天
	offlineTTL   = 72 * time.Hour
	maxTitleRune = 50
	maxBodyRune  = 200
)

// Message 推送给单个账号的通知，账号即用户 ID (App 登录时绑定)
type Message struct {
	Account string
	Title   string
	Body    string
	// Ext 透传给 App，用于跳转 (例如 {"type":"post","id":"..."})
	Ext map[string]string
}

type PushService interface {
	Send(msg Message) error
}

type AliyunPushService struct {
	client *push.Client
	appKey int64
	now    func() time.Time
}

func NewAliyunPushService(cfg config.PushConfig) (*AliyunPushService, error) {
	if cfg.AccessKeyID == "" || cfg.AppKey == 0 {
		return nil, fmt.Errorf("push config is missing")
	}

	client, err := push.NewClientWithAccessKey(cfg.RegionID, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}
	return &AliyunPushService{client: client, appKey: cfg.AppKey, now: time.Now}, nil
}

func (s *AliyunPushService) Send(msg Message) error {
	if msg.Account == "" {
		return fmt.Errorf("push: empty account")
	}
	request, err := buildRequest(s.appKey, msg, s.now())
	if err != nil {
		return err
	}

	resp, err := s.client.Push(request)
	if err != nil {
		return err
	}
	logger.Log.Debug("push sent", zap.String("account", msg.Account), zap.String("message_id", resp.MessageId))
	return nil
}

func buildRequest(appKey int64, msg Message, now time.Time) (*push.PushRequest, error) {
	request := push.CreatePushRequest()
	request.AppKey = requests.NewInteger(int(appKey))
	request.Target = "ACCOUNT"
	request.TargetValue = msg.Account
	request.Title = truncate(msg.Title, maxTitleRune)
	request.Body = truncate(msg.Body, maxBodyRune)
	request.DeviceType = "ALL"
	request.PushType = "NOTICE"
	request.StoreOffline = requests.NewBoolean(true)
	request.ExpireTime = now.Add(offlineTTL).UTC().Format("2006-01-02T15:04:05Z")

	if len(msg.Ext) > 0 {
		ext, err := json.Marshal(msg.Ext)
		if err != nil {
			return nil, err
		}
		request.AndroidExtParameters = string(ext)
		request.IOSExtParameters = string(ext)
	}
	return request, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// NoopPush 未配置推送时使用
type NoopPush struct{}

func (NoopPush) Send(Message) error { return nil }
