// Package resilience retries operations with exponential backoff.
//
// Drivers use it to pick a free name when PutFile collides and to retry
// the removal of expired temporary copies:
//
//	err := resilience.RetryFunc(ctx, resilience.DefaultRetryConfig(), func() error {
//	    return os.Remove(path)
//	})
package resilience
