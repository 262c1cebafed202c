// Package pipeline provides the orchestration logic that turns a corpus
// of score files into an aggregated token Corpus.
//
// # Manager
//
// The Manager coordinates the entire run:
//
//  1. Dispatch corpus items to a bounded pool of workers
//  2. Parse each score and extract its tokens
//  3. Aggregate results by path, whatever order they complete in
//  4. Persist the artifact atomically
//  5. Generate a playlist of tokenized files (optional)
//  6. Write Prometheus metrics to a textfile (optional)
//
// # Basic Usage
//
//	manager := pipeline.NewManager(settings, midi.NewParser(), func(event pipeline.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	corpus, err := manager.Run(ctx, items)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_, err = manager.Persist(ctx, corpus)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// Workers are bounded by settings.Workers, which defaults to the number of
// CPUs. One failing item never stops the others; it is recorded in the
// Corpus failures instead. Cancelling the context stops dispatching, lets
// in-flight items finish and makes Run return the context error without a
// Corpus, so nothing gets persisted.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// Presentation layers can also poll Manager.Progress for (completed, total).
package pipeline
