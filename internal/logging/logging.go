package logging

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
)

// ContextKey defines the context key type.
type ContextKey string

// ContextIDKey holds the key of the context ID.
const ContextIDKey ContextKey = "ctx_id"

// NewContext returns a child context carrying a new context ID under
// ContextIDKey. The ID ties together all log lines of one received frame.
func NewContext(ctx context.Context) (context.Context, error) {
	ctxID, err := uuid.NewV4()
	if err != nil {
		return nil, errors.Wrap(err, "new uuid error")
	}
	return context.WithValue(ctx, ContextIDKey, ctxID), nil
}

// ContextID returns the context ID of the given context.
func ContextID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ContextIDKey).(uuid.UUID)
	return id
}
