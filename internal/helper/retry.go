// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package helper

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/telekom/proxydns/internal/logger"
)

// maxRetryCount limits the configurable retries
const maxRetryCount = 5

var (
	// ErrInvalidRetryCount is returned when the retry count is out of range
	ErrInvalidRetryCount = errors.New("retry count must be between 0 and 5")
	// ErrInvalidRetryDelay is returned when the retry delay is negative
	ErrInvalidRetryDelay = errors.New("retry delay must not be negative")
)

// RetryConfig is the retry policy of a caller
type RetryConfig struct {
	// Count is the number of retries after the first attempt
	Count int `yaml:"count" mapstructure:"count"`
	// Delay is the delay before the first retry, it doubles with every further retry
	Delay time.Duration `yaml:"delay" mapstructure:"delay"`
}

// Validate checks if the retry configuration is usable
func (rc RetryConfig) Validate() (err error) {
	if rc.Count < 0 || rc.Count > maxRetryCount {
		err = errors.Join(err, ErrInvalidRetryCount)
	}
	if rc.Delay < 0 {
		err = errors.Join(err, ErrInvalidRetryDelay)
	}
	return err
}

// Effector will be the function called by the Retry function
type Effector func(context.Context) error

// Retry runs the effector until it succeeds or the retries are exhausted, with an exponential backoff.
// If retryable functions are given, an error is only retried if all of them report true for it.
func Retry(effector Effector, rc RetryConfig, retryable ...func(error) bool) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		log := logger.FromContext(ctx)
		for r := 1; ; r++ {
			err := effector(ctx)
			if err == nil || r > rc.Count || !shouldRetry(err, retryable) {
				return err
			}

			delay := getExpBackoff(rc.Delay, r)
			log.WarnContext(ctx, "Effector call failed, retrying", "attempt", r, "delay", delay, "error", err)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
}

func shouldRetry(err error, retryable []func(error) bool) bool {
	for _, f := range retryable {
		if !f(err) {
			return false
		}
	}
	return true
}

// calculate the exponential delay for a given iteration
// first iteration is 1
func getExpBackoff(initialDelay time.Duration, iteration int) time.Duration {
	if iteration <= 1 {
		return initialDelay
	}
	return time.Duration(math.Pow(2, float64(iteration-1))) * initialDelay
}
