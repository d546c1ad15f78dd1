// Package logspool provides an embeddable, asynchronous file logger.
//
// Callers emit severity-tagged entries, either plain messages or structured
// fault trees built from Go errors, and a single background goroutine appends
// them to a date-rotated file. Enqueueing never blocks: entries wait in a
// bounded queue (10,000 by default) and are dropped silently when it is full.
//
// Key Features:
//
//   - Non-blocking enqueue with a bounded FIFO queue
//   - One background writer with retry and backlog protection
//   - Exclusive file append, in-process and across processes (flock)
//   - XML fragments or flattened text lines
//   - Fault trees with cause chains, aggregates and classified errors
//   - File names derived from a date pattern, one file per day by default
//
// Basic Usage:
//
//	logger, err := logspool.New(logspool.WithDirectory("/var/log/app"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer logger.Shutdown(context.Background())
//
//	logger.Info("Application started")
//	if err := connect(); err != nil {
//		logger.LogFault(err)
//	}
//
// Shutdown (or Stop(true)) must be called before the process exits; entries
// still queued at exit are otherwise lost.
package logspool
