// internal/app/system/auditlog/logger.go

// Package auditlog records security- and money-relevant events to both
// the structured log and the audit_events collection. A failed audit
// write never fails the operation being audited; it is logged and
// dropped.
package auditlog

import (
	"context"

	"github.com/dalemusser/commonshub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Logger struct {
	store *audit.Store
	log   *zap.Logger
}

func New(store *audit.Store, log *zap.Logger) *Logger {
	return &Logger{store: store, log: log}
}

// Record persists e and mirrors it to the structured log.
func (l *Logger) Record(ctx context.Context, e audit.Event) {
	fields := []zap.Field{
		zap.String("category", e.Category),
		zap.String("event_type", e.EventType),
		zap.Bool("success", e.Success),
	}
	if e.UserID != nil {
		fields = append(fields, zap.String("user_id", e.UserID.Hex()))
	}
	if e.CommunityID != nil {
		fields = append(fields, zap.String("community_id", e.CommunityID.Hex()))
	}
	if e.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", e.FailureReason))
	}
	l.log.Info("audit", fields...)

	if l.store == nil {
		return
	}
	if err := l.store.Insert(ctx, e); err != nil {
		l.log.Warn("audit event not persisted", zap.Error(err))
	}
}

// Membership records a membership-category event for (community, user).
func (l *Logger) Membership(ctx context.Context, eventType string, communityID, userID primitive.ObjectID, success bool, reason string) {
	l.Record(ctx, audit.Event{
		Category:      audit.CategoryMembership,
		EventType:     eventType,
		CommunityID:   &communityID,
		UserID:        &userID,
		Success:       success,
		FailureReason: reason,
	})
}

// Payment records a payment-category event with free-form details.
func (l *Logger) Payment(ctx context.Context, eventType string, userID primitive.ObjectID, success bool, details map[string]string) {
	l.Record(ctx, audit.Event{
		Category:  audit.CategoryPayment,
		EventType: eventType,
		UserID:    &userID,
		Success:   success,
		Details:   details,
	})
}
