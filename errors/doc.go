// Package errors provides the error taxonomy of the stream engine.
//
// Every failure surfaced by streamkit is an *AppError carrying a
// machine-readable ErrorCode:
//
//   - STREAM_FAILED: a consumer failed while handling an input (StreamError)
//   - SOURCE_FAILED: a producer failed, e.g. reading a file (SourceError)
//   - TIMEOUT: a bounded wait on a promise expired
//   - DOUBLE_RESOLUTION: a promise was resolved twice
//   - DIVERGED: a consumer stayed in Cont after EOF
//   - STOPPED, QUEUE_FULL, ALREADY_ATTACHED: push source misuse
//
// Use IsCode to match an error by code through any wrapping:
//
//	if errors.IsCode(err, errors.ErrCodeTimeout) {
//	    // the promise is still pending
//	}
package errors
