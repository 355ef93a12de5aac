package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zephyrtronium/stackcalc"
	"github.com/zephyrtronium/stackcalc/internal/config"
	"github.com/zephyrtronium/stackcalc/internal/render"
)

const (
	// MaxExpressionLen is the longest expression the worker evaluates.
	MaxExpressionLen = 1 << 16
	// MaxPrec is the highest precision a request may ask for.
	MaxPrec = 1 << 16
)

// Streams is the subset of the Redis client used by the worker.
// *redis.Client implements it.
type Streams interface {
	Pinger
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
}

// Request is an evaluation request read from the request stream.
type Request struct {
	ID         string `json:"id"`
	Expression string `json:"expression"`
	// Prec selects arbitrary-precision evaluation with that many bits when it
	// is above 64.
	Prec uint `json:"prec,omitempty"`
}

// Response is an evaluation result published to the result stream. Exactly
// one of Result and Error is set.
type Response struct {
	ID         string    `json:"id"`
	Expression string    `json:"expression"`
	Result     string    `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`
	Kind       string    `json:"kind,omitempty"`
	WorkerID   string    `json:"worker_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// Worker evaluates expressions from a Redis stream.
type Worker struct {
	id            string
	streamKey     string
	consumerGroup string
	resultStream  string
	blockTime     time.Duration
	batchSize     int64
	maxDepth      int

	client   Streams
	eval     *stackcalc.Evaluator
	renderer *render.Renderer
	logger   *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewWorker creates a new worker. Results are formatted with the config's
// printf verb.
func NewWorker(cfg *config.Config, client Streams, logger *zap.Logger) (*Worker, error) {
	r, err := render.New(cfg.Format, "")
	if err != nil {
		return nil, err
	}
	return &Worker{
		id:            cfg.Worker.ID,
		streamKey:     cfg.Worker.StreamKey,
		consumerGroup: cfg.Worker.ConsumerGroup,
		resultStream:  cfg.Worker.ResultStream,
		blockTime:     cfg.Worker.BlockTime,
		batchSize:     cfg.Worker.BatchSize,
		maxDepth:      cfg.MaxDepth,
		client:        client,
		eval:          stackcalc.New(stackcalc.MaxDepth(cfg.MaxDepth)),
		renderer:      r,
		logger:        logger.With(zap.String("worker_id", cfg.Worker.ID)),
	}, nil
}

// Start creates the consumer group if needed and starts processing requests
// in the background until Stop is called or ctx is canceled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("starting worker",
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
	)

	if err := w.ensureConsumerGroup(ctx); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.processWork(ctx)

	w.logger.Info("worker started")
	return nil
}

// Stop stops the worker and waits for the request in flight, if any, to
// finish, or for ctx to be done.
func (w *Worker) Stop(ctx context.Context) error {
	if w.cancel == nil {
		return nil
	}
	w.logger.Info("stopping worker")
	w.cancel()
	select {
	case <-w.done:
		w.logger.Info("worker stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker did not stop: %w", ctx.Err())
	}
}

// ensureConsumerGroup creates the consumer group if it doesn't exist.
func (w *Worker) ensureConsumerGroup(ctx context.Context) error {
	err := w.client.XGroupCreateMkStream(ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			w.logger.Debug("consumer group already exists", zap.String("group", w.consumerGroup))
			return nil
		}
		return err
	}
	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// processWork reads and handles requests until ctx is canceled.
func (w *Worker) processWork(ctx context.Context) {
	defer close(w.done)
	for ctx.Err() == nil {
		streams, err := w.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.consumerGroup,
			Consumer: w.id,
			Streams:  []string{w.streamKey, ">"},
			Count:    w.batchSize,
			Block:    w.blockTime,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			w.logger.Error("failed to read from stream", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		for _, stream := range streams {
			for _, message := range stream.Messages {
				w.handleMessage(ctx, message)
			}
		}
	}
}

// handleMessage evaluates one stream entry, publishes its result, and
// acknowledges it. A message that has been read is always finished, even if
// the worker is stopping.
func (w *Worker) handleMessage(ctx context.Context, message redis.XMessage) {
	ctx = context.WithoutCancel(ctx)
	defer w.acknowledge(ctx, message.ID)

	req, err := parseRequest(message.Values)
	if err != nil {
		w.logger.Warn("malformed request", zap.String("message_id", message.ID), zap.Error(err))
		w.publishMalformed(ctx, message.ID, err)
		return
	}

	resp := w.Process(req)
	if resp.Error != "" {
		w.logger.Info("evaluation failed",
			zap.String("message_id", message.ID),
			zap.String("request_id", resp.ID),
			zap.String("kind", resp.Kind),
			zap.String("error", resp.Error),
		)
	} else {
		w.logger.Debug("evaluated expression",
			zap.String("message_id", message.ID),
			zap.String("request_id", resp.ID),
			zap.String("result", resp.Result),
		)
	}

	if err := w.publish(ctx, w.resultStream, resp); err != nil {
		w.logger.Error("failed to publish result",
			zap.String("message_id", message.ID),
			zap.String("request_id", resp.ID),
			zap.Error(err),
		)
	}
}

// parseRequest decodes the JSON data field of a stream entry.
func parseRequest(values map[string]interface{}) (Request, error) {
	var req Request
	data, ok := values["data"].(string)
	if !ok {
		return req, fmt.Errorf("missing or invalid 'data' field")
	}
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		return req, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	return req, nil
}

// Process evaluates a request. Requests without an ID are given a random one.
func (w *Worker) Process(req Request) Response {
	resp := Response{
		ID:         req.ID,
		Expression: req.Expression,
		WorkerID:   w.id,
		Timestamp:  time.Now().UTC(),
	}
	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}

	var (
		v   interface{}
		err error
	)
	switch {
	case len(req.Expression) > MaxExpressionLen:
		resp.Error = fmt.Sprintf("expression longer than %d bytes", MaxExpressionLen)
		return resp
	case req.Prec > MaxPrec:
		resp.Error = fmt.Sprintf("precision above %d bits", MaxPrec)
		return resp
	case req.Prec > 64:
		e := stackcalc.New(stackcalc.MaxDepth(w.maxDepth), stackcalc.Prec(req.Prec))
		v, err = e.EvalBig(req.Expression)
	default:
		v, err = w.eval.Eval(req.Expression)
	}
	if err != nil {
		resp.Error = err.Error()
		resp.Kind = stackcalc.Kind(err)
		return resp
	}
	resp.Result = w.renderer.Value(v)
	return resp
}

// publish adds a JSON value to a stream.
func (w *Worker) publish(ctx context.Context, stream string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	err = w.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to stream: %w", err)
	}
	return nil
}

// publishMalformed reports an unreadable request on the error stream.
func (w *Worker) publishMalformed(ctx context.Context, messageID string, cause error) {
	event := map[string]interface{}{
		"message_id": messageID,
		"error":      cause.Error(),
		"worker_id":  w.id,
		"timestamp":  time.Now().UTC(),
	}
	if err := w.publish(ctx, w.resultStream+".errors", event); err != nil {
		w.logger.Error("failed to publish error event", zap.Error(err))
	}
}

// acknowledge acknowledges a message from the stream.
func (w *Worker) acknowledge(ctx context.Context, messageID string) {
	err := w.client.XAck(ctx, w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}
