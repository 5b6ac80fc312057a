// internal/app/system/txn/txn.go

// Package txn wraps multi-document MongoDB transactions with a fallback for
// deployments that cannot run them (standalone servers, old DocumentDB).
//
// Every engine mutation that touches more than one document goes through
// WithTransaction. On a replica set the callback runs inside a real
// transaction: reads see a consistent snapshot and writes commit atomically.
// On a standalone server the callback runs without a transaction, which is
// acceptable only for local development; production runs against a replica
// set and the startup log makes the degraded mode visible.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// WithTransaction runs fn inside a MongoDB transaction when the deployment
// supports one, and plainly otherwise. fn must be safe to retry: the driver
// re-invokes it on transient transaction errors.
func WithTransaction(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	session, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			zap.L().Warn("mongo sessions unavailable, running without transaction", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		zap.L().Warn("mongo transactions unavailable, running without transaction", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// Server error codes that indicate transactions are not available on this
// deployment (as opposed to a transaction that legitimately failed).
const (
	codeIllegalOperation        = 20
	codeCommandNotSupported     = 51
	codeOperationNotSupportedIn = 263
)

// IsNotSupported reports whether err means the deployment cannot run
// transactions at all, rather than that this transaction failed.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case codeIllegalOperation, codeCommandNotSupported, codeOperationNotSupportedIn:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "illegal operation"):
		return true
	case strings.Contains(msg, "transaction") && strings.Contains(msg, "replica set"):
		return true
	case strings.Contains(msg, "transaction") && strings.Contains(msg, "session"):
		return true
	case strings.Contains(msg, "session") && strings.Contains(msg, "not supported"):
		return true
	}
	return false
}
