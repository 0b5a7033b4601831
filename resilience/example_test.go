package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/trackerhealth/resilience"
)

func ExampleTimeout_Budget() {
	t := resilience.NewTimeout(resilience.TimeoutConfig{
		Grace: time.Second,
		Max:   10 * time.Second,
	})

	fmt.Println(t.Budget(1500 * time.Millisecond))
	fmt.Println(t.Budget(time.Minute))
	// Output:
	// 2.5s
	// 10s
}

func ExampleExecutor_Execute() {
	executor := resilience.NewExecutor(
		resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Rate:  1,
			Burst: 1,
		})),
	)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		err := executor.Execute(ctx, "203.0.113.7", time.Second, func(context.Context) error {
			return nil
		})
		switch {
		case errors.Is(err, resilience.ErrRateLimitExceeded):
			fmt.Println("rate limited")
		case err == nil:
			fmt.Println("admitted")
		}
	}
	// Output:
	// admitted
	// rate limited
}
