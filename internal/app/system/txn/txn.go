// internal/app/system/txn/txn.go

// Package txn wraps multi-document MongoDB transactions.
//
// Replica sets and sharded clusters support transactions; a standalone
// mongod does not. Run tries a real transaction first and falls back to
// executing the callback without one when the deployment cannot support
// it, so two-write operations (membership + community member list)
// still complete on dev setups. Run reports the fallback to its caller,
// who owes a reconcile step to converge any partial write.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a MongoDB transaction when the deployment
// supports one. When transactions are unsupported, fn runs directly
// against the plain context and fellBack is true: the writes were not
// atomic, and the caller must repair any partial result (see the
// membership ledger's reconcile path).
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) (fellBack bool, err error) {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			log.Debug("mongo sessions unsupported; running without transaction")
			return true, fn(ctx)
		}
		return false, err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		log.Debug("mongo transactions unsupported; running without transaction")
		return true, fn(ctx)
	}
	return false, err
}

// IsNotSupported reports whether err indicates the deployment cannot
// run multi-document transactions (standalone mongod, old server, or a
// driver session error).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		// 20 IllegalOperation (transaction numbers require a replica set)
		// 51 a transaction op sent to a server that cannot honor it
		// 263 OperationNotSupportedInTransaction
		switch ce.Code {
		case 20, 51, 263:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("session") && has("not supported"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("illegal operation") && has("transaction"):
		return true
	}
	return false
}
