package sse

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/smallnest/chanx"
)

// ErrManagerClosed 表示連線管理器已停止運作
var ErrManagerClosed = errors.New("connection manager is closed")

// publishQueueCapacity 是發布佇列的初始容量
// 佇列是無上限的，出價提交路徑不會因為訂閱端堆積而被阻塞
const publishQueueCapacity = 100

// connectionManager 管理多個 SSE 頻道的訂閱與發布
// 發布走單一無上限佇列，由一個分發 goroutine 依序廣播，
// 單一行程內即可保證事件依發布順序送達
type connectionManager[T any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu     sync.RWMutex   // 保護 active 和 channels 的讀寫
	wg     sync.WaitGroup // 用於等待分發 goroutine 完成
	active bool           // 標記 manager 是否正在運作中

	queue    *chanx.UnboundedChan[PublishRequest[T]] // 發布佇列
	channels map[string]*Channel[T]                  // 儲存所有活躍的頻道
}

type ManagerOption[T any] func(*connectionManager[T])

// WithLogger 設定連線管理器使用的logger
func WithLogger[T any](logger *slog.Logger) ManagerOption[T] {
	return func(cm *connectionManager[T]) {
		if logger != nil {
			cm.logger = logger
		}
	}
}

// NewConnectionManager 建立一個新的連線管理器
func NewConnectionManager[T any](opts ...ManagerOption[T]) IConnectionManager[T] {
	ctx, cancel := context.WithCancel(context.Background())
	cm := &connectionManager[T]{
		ctx:      ctx,
		cancel:   cancel,
		logger:   slog.Default(),
		active:   true,
		queue:    chanx.NewUnboundedChan[PublishRequest[T]](ctx, publishQueueCapacity),
		channels: make(map[string]*Channel[T]),
	}
	for _, opt := range opts {
		opt(cm)
	}
	cm.logger = cm.logger.With(slog.String("caller", "ConnectionManager"))
	return cm
}

// Start 啟動連線管理器，開始處理訊息的分發
// 應在呼叫其他方法前先呼叫此方法
func (cm *connectionManager[T]) Start() {
	cm.wg.Add(1)
	go func() {
		defer cm.wg.Done()
		defer cm.logger.Info("dispatch goroutine stopped")
		for request := range cm.queue.Out {
			cm.mu.RLock()
			channel, ok := cm.channels[request.Channel]
			cm.mu.RUnlock()
			if ok {
				channel.Broadcast(request.Message)
			}
		}
	}()
}

// Done 停止連線管理器的運作，關閉所有訂閱
func (cm *connectionManager[T]) Done() {
	cm.mu.Lock()
	if !cm.active {
		cm.mu.Unlock()
		return
	}
	cm.active = false
	cm.mu.Unlock()

	// 取消 context 讓佇列排空後關閉，分發 goroutine 隨之結束
	cm.cancel()
	cm.wg.Wait()

	cm.mu.Lock()
	defer cm.mu.Unlock()
	for _, channel := range cm.channels {
		channel.UnsubscribeAll()
	}
	clear(cm.channels)
}

// Subscribe 註冊並訂閱指定頻道
func (cm *connectionManager[T]) Subscribe(channelName string) (<-chan T, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if !cm.active {
		return nil, ErrManagerClosed
	}
	channel, ok := cm.channels[channelName]
	if !ok {
		channel = &Channel[T]{subscribers: make(map[<-chan T]chan<- T)}
		cm.channels[channelName] = channel
	}
	return channel.Subscribe(), nil
}

// Publish 將資料推送到指定頻道
// 沒有訂閱者的頻道的訊息會被分發端丟棄
func (cm *connectionManager[T]) Publish(channelName string, data T) error {
	cm.mu.RLock()
	if !cm.active {
		cm.mu.RUnlock()
		return ErrManagerClosed
	}
	cm.mu.RUnlock()

	select {
	case cm.queue.In <- PublishRequest[T]{Channel: channelName, Message: data}:
		return nil
	case <-cm.ctx.Done():
		return ErrManagerClosed
	}
}

// Unsubscribe 取消訂閱指定頻道，頻道閒置時一併回收
func (cm *connectionManager[T]) Unsubscribe(channelName string, ch <-chan T) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	channel, ok := cm.channels[channelName]
	if !ok {
		return
	}
	channel.Unsubscribe(ch)
	if channel.IsIdle() {
		delete(cm.channels, channelName)
	}
}
