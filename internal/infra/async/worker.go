package async

import "context"

// Worker is a background loop started by the api command. Run blocks until
// ctx is cancelled and calls done on its way out.
type Worker interface {
	Run(ctx context.Context, done func())
	Shutdown()
}
