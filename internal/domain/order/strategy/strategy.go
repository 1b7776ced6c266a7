package strategy

import "context"

// NotifyResult 回调解析结果
type NotifyResult struct {
	OrderNo string
	Amount  float64
	Success bool
}

type PaymentStrategy interface {
	// Pay 发起支付，返回支付参数（如签名串、prepay id）
	Pay(ctx context.Context, orderNo string, amount float64, subject string) (string, error)

	// Notify 验签并解析回调
	Notify(ctx context.Context, params interface{}) (*NotifyResult, error)
}
