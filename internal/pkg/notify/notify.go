package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"thywilluche/internal/pkg/mailer"
	"thywilluche/internal/pkg/push"
	"thywilluche/internal/pkg/worker"
	"thywilluche/pkg/logger"
	"thywilluche/pkg/metrics"

	"go.uber.org/zap"
)

// Notification 一条待投递的通知，Email 与 Push 可同时存在
type Notification struct {
	To       string // 收件邮箱，为空不发邮件
	Subject  string
	Template string
	Data     map[string]any

	UserID    string // 推送账号，为空不推送
	PushTitle string
	PushBody  string
	PushExt   map[string]string
}

// Notifier 异步通知，投递失败不影响调用方
type Notifier interface {
	Notify(n Notification)
}

// Dispatcher 基于 worker pool 的通知投递
type Dispatcher struct {
	pool     *worker.WorkerPool[Notification]
	mailer   mailer.Mailer
	push     push.PushService
	renderer *Renderer
}

func NewDispatcher(m mailer.Mailer, p push.PushService, renderer *Renderer, workers, buffer int) *Dispatcher {
	if p == nil {
		p = push.NoopPush{}
	}
	d := &Dispatcher{mailer: m, push: p, renderer: renderer}
	d.pool = worker.NewWorkerPool("notify", d.deliver, workers, buffer)
	return d
}

func (d *Dispatcher) Start() { d.pool.Start() }

// Stop 投递完队列中剩余通知后返回
func (d *Dispatcher) Stop() { d.pool.Stop() }

func (d *Dispatcher) Notify(n Notification) {
	if n.To == "" && n.UserID == "" {
		return
	}
	d.pool.AddTask(n)
}

// deliver 任一渠道失败则整体重试，已成功的渠道可能重复投递
func (d *Dispatcher) deliver(ctx context.Context, n Notification) error {
	var errs []error

	if n.UserID != "" && n.PushTitle != "" {
		err := d.push.Send(push.Message{Account: n.UserID, Title: n.PushTitle, Body: n.PushBody, Ext: n.PushExt})
		metrics.GetGlobalCollector().RecordNotification("push", err == nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("push: %w", err))
		}
	}

	if n.To != "" {
		html, err := d.renderer.Render(n.Template, n.Data)
		if err != nil {
			// 模板错误重试无意义
			logger.Log.Error("render notification", zap.String("template", n.Template), zap.Error(err))
			return errors.Join(errs...)
		}
		err = d.mailer.Send(mailer.Message{To: n.To, Subject: n.Subject, HTMLBody: html})
		metrics.GetGlobalCollector().RecordNotification("email", err == nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("mail: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Nop 丢弃所有通知
type Nop struct{}

func (Nop) Notify(Notification) {}

// Recorder 记录通知，测试使用
type Recorder struct {
	mu   sync.Mutex
	Sent []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = append(r.Sent, n)
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.Sent...)
}
