package calsync

import "time"

const maxBackoff = 24 * time.Hour

// NextRetryDelay calcula o backoff quadrático com teto:
// min(attempts² minutos, 24h). A curva exata é ajustável; o que importa
// é crescer monotonicamente e não martelar um provedor instável.
func NextRetryDelay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}

	delay := time.Duration(attempts) * time.Duration(attempts) * time.Minute
	if delay > maxBackoff {
		return maxBackoff
	}
	return delay
}
