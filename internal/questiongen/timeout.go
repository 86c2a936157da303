package questiongen

import "time"

// RequestTimeout is the wall-clock bound for generating count questions:
// every batch may use all of its attempts, each up to perCall long.
func RequestTimeout(count, batchSize, maxRetries int, perCall time.Duration) time.Duration {
	if count <= 0 || batchSize <= 0 || maxRetries <= 0 || perCall <= 0 {
		return 0
	}
	batches := (count + batchSize - 1) / batchSize
	return time.Duration(batches*maxRetries) * perCall
}
