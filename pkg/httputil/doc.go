// Package httputil provides HTTP helpers shared by the PlantUML client.
//
// # Retry
//
// [Retry] re-runs an operation for transient failures only. Callers mark an
// error as transient by wrapping it in [RetryableError]; everything else is
// returned immediately:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// The PlantUML client does not retry by default; retries are opt-in through
// its configuration.
package httputil
