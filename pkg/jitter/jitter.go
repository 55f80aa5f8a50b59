// Package jitter добавляет случайный разброс к задержкам повторных попыток,
// чтобы клиенты не переподключались к хранилищу одновременно.
package jitter

import (
	"math/rand/v2"
	"time"
)

// DefaultJitter задает стандартный коэффициент разброса (50%)
const DefaultJitter = 0.5

// Duration возвращает d, увеличенную на случайную долю в пределах [0, d*factor].
func Duration(d time.Duration, factor float64) time.Duration {
	if d <= 0 || factor <= 0 {
		return d
	}

	return d + time.Duration(rand.Float64()*factor*float64(d))
}

// ExponentialBackoff удваивает base на каждую попытку (нумерация с нуля),
// ограничивает результат значением limit и добавляет разброс.
func ExponentialBackoff(base, limit time.Duration, attempt int, factor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt && backoff < limit; i++ {
		backoff *= 2
	}

	return Duration(min(backoff, limit), factor)
}
