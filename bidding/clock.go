package bidding

import "time"

// Clock 提供目前時間
// 以介面注入讓測試可以模擬時間流逝
type Clock interface {
	Now() time.Time
}

// SystemClock 使用系統時鐘
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
