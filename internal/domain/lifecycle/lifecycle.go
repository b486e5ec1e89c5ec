// Package lifecycle holds timing constants shared by components that start and stop with the application.
package lifecycle

import "time"

// DefaultTimeout bounds start hooks (database ping, migrations) and graceful shutdown.
const DefaultTimeout = 10 * time.Second
