package sse

import (
	"sync"
)

// subscriberBuffer 是每個訂閱者通道的緩衝大小，
// 讓單一慢速訂閱者不會立刻卡住整個頻道的廣播
const subscriberBuffer = 16

// Channel 管理單一主題（一場拍賣）的所有訂閱者，
// 並將收到的訊息廣播給每一個訂閱者
type Channel[T any] struct {
	mu          sync.RWMutex
	subscribers map[<-chan T]chan<- T
}

// NewChannel 建立一個新的 SSE 頻道
func NewChannel[T any]() IChannel[T] {
	return &Channel[T]{
		subscribers: make(map[<-chan T]chan<- T),
	}
}

// Subscribe 建立一個新的訂閱，回傳唯讀通道給呼叫者
func (c *Channel[T]) Subscribe() <-chan T {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan T, subscriberBuffer)
	c.subscribers[ch] = ch
	return ch
}

// Unsubscribe 移除指定的訂閱並關閉其通道
func (c *Channel[T]) Unsubscribe(ch <-chan T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if writeCh, exists := c.subscribers[ch]; exists {
		delete(c.subscribers, ch)
		close(writeCh)
	}
}

// UnsubscribeAll 關閉所有訂閱者的通道並清空訂閱清單
func (c *Channel[T]) UnsubscribeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, writeCh := range c.subscribers {
		close(writeCh)
	}
	clear(c.subscribers)
}

// Broadcast 將訊息送給所有仍在訂閱清單中的通道
func (c *Channel[T]) Broadcast(message T) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, writeCh := range c.subscribers {
		writeCh <- message
	}
}

// IsIdle 判斷頻道是否已經沒有任何訂閱者
func (c *Channel[T]) IsIdle() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subscribers) == 0
}
