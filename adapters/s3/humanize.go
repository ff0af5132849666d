package s3

import "fmt"

// FormatBytes 將位元組數轉成人類可讀的字串
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d bytes", bytes)
	}
	value := float64(bytes)
	suffixes := []string{"KB", "MB", "GB", "TB", "PB"}
	suffix := suffixes[0]
	for _, s := range suffixes {
		suffix = s
		value /= unit
		if value < unit {
			break
		}
	}
	return fmt.Sprintf("%.2f %s", value, suffix)
}
