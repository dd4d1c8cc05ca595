package inference

import (
	"context"
	"sync"
	"time"
)

// RateLimited wraps a Service with a token bucket so batch uploads do not
// flood the training server.
type RateLimited struct {
	service  Service
	rpm      int
	mu       sync.Mutex
	tokens   int
	lastFill time.Time
}

// NewRateLimited allows at most rpm calls per minute through to service.
// A non-positive rpm returns service unchanged.
func NewRateLimited(service Service, rpm int) Service {
	if rpm <= 0 {
		return service
	}
	return &RateLimited{
		service:  service,
		rpm:      rpm,
		tokens:   rpm,
		lastFill: time.Now(),
	}
}

func (r *RateLimited) Upload(ctx context.Context, image Image, label string) (*UploadResult, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.service.Upload(ctx, image, label)
}

func (r *RateLimited) Predict(ctx context.Context, image Image) (*Prediction, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.service.Predict(ctx, image)
}

func (r *RateLimited) Train(ctx context.Context, req TrainRequest) (*TrainResult, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.service.Train(ctx, req)
}

func (r *RateLimited) wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(r.lastFill)

		// Refill tokens based on elapsed time.
		refill := int(elapsed.Seconds() * float64(r.rpm) / 60.0)
		if refill > 0 {
			r.tokens += refill
			if r.tokens > r.rpm {
				r.tokens = r.rpm
			}
			r.lastFill = now
		}

		if r.tokens > 0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
