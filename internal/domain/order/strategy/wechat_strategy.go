package strategy

import (
	"context"
	"errors"
	"math"
	"net/http"
	"thywilluche/internal/pkg/config"

	"github.com/wechatpay-apiv3/wechatpay-go/core"
	"github.com/wechatpay-apiv3/wechatpay-go/core/auth/verifiers"
	"github.com/wechatpay-apiv3/wechatpay-go/core/downloader"
	"github.com/wechatpay-apiv3/wechatpay-go/core/notify"
	"github.com/wechatpay-apiv3/wechatpay-go/core/option"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments/native"
	"github.com/wechatpay-apiv3/wechatpay-go/utils"
)

type WechatStrategy struct {
	client  *core.Client
	config  config.WechatPayConfig
	handler *notify.Handler
}

func NewWechatStrategy(cfg config.WechatPayConfig) (*WechatStrategy, error) {
	if cfg.MchID == "" {
		return nil, errors.New("wechat pay config missing")
	}

	// 1. 商户私钥
	mchPrivateKey, err := utils.LoadPrivateKey(cfg.MchPrivateKey)
	if err != nil {
		return nil, err
	}

	// 2. Client，自动下载平台证书
	ctx := context.Background()
	client, err := core.NewClient(ctx,
		option.WithWechatPayAutoAuthCipher(cfg.MchID, cfg.MchCertificateSerial, mchPrivateKey, cfg.APIv3Key),
	)
	if err != nil {
		return nil, err
	}

	// 3. 回调验签
	certVisitor := downloader.MgrInstance().GetCertificateVisitor(cfg.MchID)
	handler := notify.NewNotifyHandler(cfg.APIv3Key, verifiers.NewSHA256WithRSAVerifier(certVisitor))

	return &WechatStrategy{client: client, config: cfg, handler: handler}, nil
}

// Pay Native 支付，返回二维码链接
func (s *WechatStrategy) Pay(ctx context.Context, orderNo string, amount float64, subject string) (string, error) {
	req := native.PrepayRequest{
		Appid:       core.String(s.config.AppID),
		Mchid:       core.String(s.config.MchID),
		Description: core.String(subject),
		OutTradeNo:  core.String(orderNo),
		NotifyUrl:   core.String(s.config.NotifyURL),
		Amount: &native.Amount{
			Total: core.Int64(toFen(amount)),
		},
	}

	svc := native.NativeApiService{Client: s.client}
	resp, _, err := svc.Prepay(ctx, req)
	if err != nil {
		return "", err
	}
	return *resp.CodeUrl, nil
}

// Notify params 为原始 *http.Request，验签需要请求头
func (s *WechatStrategy) Notify(ctx context.Context, params interface{}) (*NotifyResult, error) {
	req, ok := params.(*http.Request)
	if !ok {
		return nil, errors.New("invalid params type, expected *http.Request")
	}

	transaction := new(payments.Transaction)
	if _, err := s.handler.ParseNotifyRequest(ctx, req, transaction); err != nil {
		return nil, err
	}
	if transaction.OutTradeNo == nil || transaction.Amount == nil || transaction.Amount.Total == nil {
		return nil, errors.New("incomplete wechat transaction")
	}

	return &NotifyResult{
		OrderNo: *transaction.OutTradeNo,
		Amount:  float64(*transaction.Amount.Total) / 100.0,
		Success: transaction.TradeState != nil && *transaction.TradeState == "SUCCESS",
	}, nil
}

// toFen 元转分
func toFen(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

var _ PaymentStrategy = (*WechatStrategy)(nil)
