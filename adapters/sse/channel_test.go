package sse_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"drivebid/adapters/sse"
)

func TestChannel(t *testing.T) {
	ch := sse.NewChannel[Message]()

	// 測試訂閱
	sub := ch.Subscribe()
	assert.NotNil(t, sub)

	// 測試廣播訊息
	msg := Message{Data: "test message"}
	ch.Broadcast(msg)

	select {
	case received := <-sub:
		assert.Equal(t, msg, received)
	case <-time.After(time.Second):
		t.Fatal("did not receive message in time")
	}

	// 測試取消訂閱
	ch.Unsubscribe(sub)
	_, ok := <-sub
	assert.False(t, ok, "channel should be closed")

	// 測試 IsIdle
	assert.True(t, ch.IsIdle(), "channel should be idle")
}

func TestChannelBroadcastReachesAllSubscribers(t *testing.T) {
	ch := sse.NewChannel[Message]()

	subA := ch.Subscribe()
	subB := ch.Subscribe()

	msg := Message{Data: "new bid"}
	ch.Broadcast(msg)

	assert.Equal(t, msg, <-subA)
	assert.Equal(t, msg, <-subB)

	// UnsubscribeAll 關閉所有通道
	ch.UnsubscribeAll()
	_, okA := <-subA
	_, okB := <-subB
	assert.False(t, okA)
	assert.False(t, okB)
	assert.True(t, ch.IsIdle())
}
