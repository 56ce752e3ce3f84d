// Package jitter размазывает интервалы повторов случайной добавкой,
// чтобы упавшие одновременно клиенты не пошли на повтор синхронно.
package jitter

import (
	"math/rand"
	"time"
)

// DefaultJitter — доля случайной добавки к интервалу по умолчанию.
const DefaultJitter = 0.5

// Duration возвращает d, увеличенную на случайную долю до jitterFactor.
// Результат лежит в [d, d*(1+jitterFactor)].
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	return d + time.Duration(rand.Float64()*jitterFactor*float64(d))
}

// DurationWithSeed — то же, что Duration, но с внешним генератором.
// Нужен тестам, где требуется воспроизводимый результат.
func DurationWithSeed(d time.Duration, jitterFactor float64, rng *rand.Rand) time.Duration {
	return d + time.Duration(rng.Float64()*jitterFactor*float64(d))
}

// ExponentialBackoff считает паузу перед попыткой attempt (с нуля):
// base удваивается attempt раз, ограничивается max и получает джиттер.
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt && backoff < max; i++ {
		backoff *= 2
	}
	if backoff > max {
		backoff = max
	}
	return Duration(backoff, jitterFactor)
}
