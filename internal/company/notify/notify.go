// Package notify collects the transient notifications (toasts) produced while
// handling a request so they can be returned with the response.
package notify

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Dispatcher is the single channel handlers use to tell the user what happened.
type Dispatcher interface {
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string)
	Info(ctx context.Context, message string)
}

// Bag holds the notifications of one request.
type Bag struct {
	mu    sync.Mutex
	items []Notification
}

func (b *Bag) add(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, n)
}

// Items returns a copy of the collected notifications.
func (b *Bag) Items() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Notification(nil), b.items...)
}

type bagKey struct{}

// WithBag attaches a fresh Bag to ctx.
func WithBag(ctx context.Context) (context.Context, *Bag) {
	bag := &Bag{}
	return context.WithValue(ctx, bagKey{}, bag), bag
}

// FromContext returns the request's Bag, or nil outside a request.
func FromContext(ctx context.Context) *Bag {
	bag, _ := ctx.Value(bagKey{}).(*Bag)
	return bag
}

// Middleware gives every request its own Bag.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := WithBag(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FlashDispatcher writes notifications into the request Bag and logs them.
type FlashDispatcher struct {
	logger *zap.Logger
}

func NewFlashDispatcher(logger *zap.Logger) *FlashDispatcher {
	return &FlashDispatcher{logger: logger.Named("notify")}
}

func (d *FlashDispatcher) Success(ctx context.Context, message string) {
	d.dispatch(ctx, LevelSuccess, message)
}

func (d *FlashDispatcher) Error(ctx context.Context, message string) {
	d.dispatch(ctx, LevelError, message)
}

func (d *FlashDispatcher) Info(ctx context.Context, message string) {
	d.dispatch(ctx, LevelInfo, message)
}

func (d *FlashDispatcher) dispatch(ctx context.Context, level Level, message string) {
	bag := FromContext(ctx)
	if bag == nil {
		d.logger.Warn("notification outside request", zap.String("level", string(level)), zap.String("message", message))
		return
	}
	bag.add(Notification{Level: level, Message: message})
	d.logger.Debug("notification", zap.String("level", string(level)), zap.String("message", message))
}
