package strategy

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"thywilluche/internal/pkg/config"

	"github.com/smartwalle/alipay/v3"
)

type AlipayStrategy struct {
	client *alipay.Client
	config config.AlipayConfig
}

func NewAlipayStrategy(cfg config.AlipayConfig) (*AlipayStrategy, error) {
	if cfg.AppID == "" {
		return nil, errors.New("alipay config missing")
	}

	client, err := alipay.New(cfg.AppID, cfg.PrivateKey, cfg.IsProduction)
	if err != nil {
		return nil, err
	}

	// 支付宝公钥，用于回调验签
	if err = client.LoadAliPayPublicKey(cfg.PublicKey); err != nil {
		return nil, err
	}

	return &AlipayStrategy{client: client, config: cfg}, nil
}

// Pay 电脑网站支付，返回跳转地址
func (s *AlipayStrategy) Pay(ctx context.Context, orderNo string, amount float64, subject string) (string, error) {
	p := alipay.TradePagePay{}
	p.NotifyURL = s.config.NotifyURL
	p.ReturnURL = s.config.ReturnURL
	p.Subject = subject
	p.OutTradeNo = orderNo
	p.TotalAmount = fmt.Sprintf("%.2f", amount)
	p.ProductCode = "FAST_INSTANT_TRADE_PAY"

	u, err := s.client.TradePagePay(p)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Notify params 为回调表单 url.Values
func (s *AlipayStrategy) Notify(ctx context.Context, params interface{}) (*NotifyResult, error) {
	values, ok := params.(url.Values)
	if !ok {
		return nil, errors.New("invalid params type, expected url.Values")
	}

	noti, err := s.client.DecodeNotification(values)
	if err != nil {
		return nil, err
	}

	amount, err := strconv.ParseFloat(noti.TotalAmount, 64)
	if err != nil {
		return nil, fmt.Errorf("parse total_amount %q: %w", noti.TotalAmount, err)
	}

	return &NotifyResult{
		OrderNo: noti.OutTradeNo,
		Amount:  amount,
		Success: noti.TradeStatus == alipay.TradeStatusSuccess || noti.TradeStatus == alipay.TradeStatusFinished,
	}, nil
}

var _ PaymentStrategy = (*AlipayStrategy)(nil)
