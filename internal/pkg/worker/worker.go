package worker

import (
	"context"
	"sync"
	"thywilluche/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// Task 队列中的任务，Retry 为已重试次数
type Task[T any] struct {
	Payload T
	Retry   int
}

// HandlerFunc 处理单个任务，返回错误时进入重试队列
type HandlerFunc[T any] func(ctx context.Context, payload T) error

type WorkerPool[T any] struct {
	TaskQueue  chan Task[T]
	RetryQueue chan Task[T] // 重试队列
	Handler    HandlerFunc[T]
	WorkerNum  int
	MaxRetry   int           // 最大重试次数
	RetryDelay time.Duration // 第 n 次重试延迟 n*RetryDelay

	name     string
	quit     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewWorkerPool[T any](name string, handler HandlerFunc[T], workerNum int, bufferSize int) *WorkerPool[T] {
	if workerNum <= 0 {
		workerNum = 1
	}
	if bufferSize < 2 {
		bufferSize = 2
	}
	return &WorkerPool[T]{
		TaskQueue:  make(chan Task[T], bufferSize),
		RetryQueue: make(chan Task[T], bufferSize/2),
		Handler:    handler,
		WorkerNum:  workerNum,
		MaxRetry:   3, // 最多重试3次
		RetryDelay: time.Second,
		name:       name,
		quit:       make(chan struct{}),
	}
}

func (p *WorkerPool[T]) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	// 启动重试处理协程
	p.wg.Add(1)
	go p.retryWorker()
	logger.Log.Info("Worker pool started", zap.String("pool", p.name), zap.Int("workers", p.WorkerNum))
}

// Stop 停止接收新任务，处理完主队列中剩余任务后返回，重试队列中的任务记为死信
func (p *WorkerPool[T]) Stop() {
	p.stopOnce.Do(func() {
		close(p.quit)
		p.wg.Wait()
		logger.Log.Info("Worker pool stopped", zap.String("pool", p.name))
	})
}

func (p *WorkerPool[T]) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case task := <-p.TaskQueue:
			p.run(id, task)
		case <-p.quit:
			// 排空主队列，停止后不再重试
			for {
				select {
				case task := <-p.TaskQueue:
					if err := p.Handler(context.Background(), task.Payload); err != nil {
						p.logFailedTask(task, err)
					}
				default:
					return
				}
			}
		}
	}
}

func (p *WorkerPool[T]) run(id int, task Task[T]) {
	err := p.Handler(context.Background(), task.Payload)
	if err == nil {
		return
	}
	logger.Log.Warn("Failed to process task",
		zap.String("pool", p.name), zap.Int("worker", id), zap.Int("retry", task.Retry), zap.Error(err))

	// 如果未达到最大重试次数，加入重试队列
	if task.Retry >= p.MaxRetry {
		p.logFailedTask(task, err)
		return
	}
	task.Retry++
	select {
	case p.RetryQueue <- task:
	default:
		// 重试队列已满
		p.logFailedTask(task, err)
	}
}

func (p *WorkerPool[T]) retryWorker() {
	defer p.wg.Done()
	for {
		select {
		case task := <-p.RetryQueue:
			// 延迟重试，避免立即重试
			select {
			case <-time.After(time.Duration(task.Retry) * p.RetryDelay):
			case <-p.quit:
				p.logFailedTask(task, nil)
				p.drainRetry()
				return
			}
			// 重新加入主队列
			select {
			case p.TaskQueue <- task:
			default:
				p.logFailedTask(task, nil)
			}
		case <-p.quit:
			p.drainRetry()
			return
		}
	}
}

func (p *WorkerPool[T]) drainRetry() {
	for {
		select {
		case task := <-p.RetryQueue:
			p.logFailedTask(task, nil)
		default:
			return
		}
	}
}

func (p *WorkerPool[T]) logFailedTask(task Task[T], err error) {
	logger.Log.Error("[DeadLetter] Task failed permanently",
		zap.String("pool", p.name), zap.Int("retry", task.Retry), zap.Any("payload", task.Payload), zap.Error(err))
}

// AddTask 非阻塞入队，队列满或已停止时返回 false
func (p *WorkerPool[T]) AddTask(payload T) bool {
	select {
	case <-p.quit:
		p.logFailedTask(Task[T]{Payload: payload}, nil)
		return false
	default:
	}

	select {
	case p.TaskQueue <- Task[T]{Payload: payload}:
		return true
	default:
		logger.Log.Warn("Worker pool queue full, dropping task", zap.String("pool", p.name))
		p.logFailedTask(Task[T]{Payload: payload}, nil)
		return false
	}
}
