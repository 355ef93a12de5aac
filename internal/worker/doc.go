// Package worker evaluates expressions from a Redis stream.
//
// The worker joins a consumer group on the request stream. Each entry carries
// a JSON Request in its "data" field; the worker publishes a JSON Response to
// the result stream and acknowledges the entry. Entries that cannot be decoded
// are reported on the result stream with an ".errors" suffix.
//
// Example usage:
//
//	client := redis.NewClient(&redis.Options{Addr: cfg.Worker.RedisAddr})
//	w, err := worker.NewWorker(cfg, client, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := w.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop(context.Background())
//
// Health checks are provided via a separate HTTP server:
//
//	healthServer := worker.NewHealthServer(cfg.Worker.HealthPort, client, logger)
//	healthServer.Start()
//	defer healthServer.Stop(context.Background())
package worker
