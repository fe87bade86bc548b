// internal/app/system/membership/ledger.go

// Package membership owns the membership ledger: the authoritative
// record of who belongs to which community and in what role, plus the
// denormalized member list each community carries for cheap reads.
//
// Every mutation writes both records. On deployments with transaction
// support the two writes commit atomically; on a standalone mongod they
// run unguarded and every join/leave is followed by an opportunistic
// repair that recomputes the member list from the ledger, which is
// always the source of truth.
package membership

import (
	"context"
	"errors"

	"github.com/dalemusser/commonshub/internal/app/store/audit"
	communitystore "github.com/dalemusser/commonshub/internal/app/store/communities"
	membershipstore "github.com/dalemusser/commonshub/internal/app/store/memberships"
	"github.com/dalemusser/commonshub/internal/app/system/auditlog"
	"github.com/dalemusser/commonshub/internal/app/system/authz"
	"github.com/dalemusser/commonshub/internal/app/system/status"
	"github.com/dalemusser/commonshub/internal/app/system/timeouts"
	"github.com/dalemusser/commonshub/internal/app/system/txn"
	"github.com/dalemusser/commonshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	// ErrCommunityNotFound is returned when the referenced community
	// does not exist.
	ErrCommunityNotFound = errors.New("community not found")

	// ErrAlreadyMember is returned by Join when the user already holds
	// an active membership in the community.
	ErrAlreadyMember = errors.New("user is already a member of this community")

	// ErrNoMembership is returned when an operation requires a
	// membership the user does not hold.
	ErrNoMembership = errors.New("user is not a member of this community")
)

type Ledger struct {
	db          *mongo.Database
	log         *zap.Logger
	communities *communitystore.Store
	memberships *membershipstore.Store
	audit       *auditlog.Logger
}

func NewLedger(db *mongo.Database, log *zap.Logger, audit *auditlog.Logger) *Ledger {
	return &Ledger{
		db:          db,
		log:         log,
		communities: communitystore.New(db),
		memberships: membershipstore.New(db),
		audit:       audit,
	}
}

// CreateCommunityWithOwner creates a community and its owner's admin
// membership in one step. The community is never visible without an
// admin: both documents commit in the same transaction, and the
// denormalized member list is seeded with the owner.
func (l *Ledger) CreateCommunityWithOwner(ctx context.Context, name, description string, ownerID primitive.ObjectID) (models.Community, error) {
	c := communitystore.NewCommunity(name, description, ownerID)

	_, err := txn.Run(ctx, l.db, l.log, func(ctx context.Context) error {
		if err := l.communities.Insert(ctx, c); err != nil {
			return err
		}
		_, err := l.memberships.Insert(ctx, c.ID, ownerID, authz.RoleAdmin)
		return err
	})
	if err != nil {
		return models.Community{}, err
	}

	l.audit.Membership(ctx, audit.EventCommunityCreated, c.ID, ownerID, true, "")
	return c, nil
}

// Join adds userID to the community as a plain member. The membership
// insert and the member-list append happen in one transaction; the
// unique (community, user) index turns a lost race into ErrAlreadyMember
// rather than a second membership. A membership left inactive by a
// moderation hold is reactivated instead of duplicated. When the
// deployment cannot run transactions, the two writes run unguarded and
// a repair pass converges the member list afterward.
func (l *Ledger) Join(ctx context.Context, communityID, userID primitive.ObjectID) (models.Membership, error) {
	if _, err := l.communities.GetByID(ctx, communityID); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Membership{}, ErrCommunityNotFound
		}
		return models.Membership{}, err
	}

	reactivate := false
	if existing, err := l.memberships.Get(ctx, communityID, userID); err == nil {
		if existing.Status == status.Active {
			return models.Membership{}, ErrAlreadyMember
		}
		reactivate = true
	} else if err != mongo.ErrNoDocuments {
		return models.Membership{}, err
	}

	var m models.Membership
	fellBack, err := txn.Run(ctx, l.db, l.log, func(ctx context.Context) error {
		var err error
		if reactivate {
			m, err = l.memberships.Reactivate(ctx, communityID, userID)
		} else {
			m, err = l.memberships.Insert(ctx, communityID, userID, authz.RoleMember)
		}
		if err != nil {
			return err
		}
		return l.communities.AddMember(ctx, communityID, userID)
	})
	if fellBack {
		l.repairMembers(ctx, communityID)
	}
	if err != nil {
		if errors.Is(err, membershipstore.ErrDuplicateMembership) {
			return models.Membership{}, ErrAlreadyMember
		}
		// A racing join reactivated the membership first.
		if reactivate && errors.Is(err, mongo.ErrNoDocuments) {
			return models.Membership{}, ErrAlreadyMember
		}
		l.audit.Membership(ctx, audit.EventMemberJoined, communityID, userID, false, err.Error())
		return models.Membership{}, err
	}

	l.audit.Membership(ctx, audit.EventMemberJoined, communityID, userID, true, "")
	return m, nil
}

// Leave removes userID's membership and drops them from the member
// list. A user with no membership gets ErrNoMembership, including when
// two concurrent leaves race and one finds nothing left to delete.
// As with Join, a non-transactional fallback is followed by a repair
// pass.
func (l *Ledger) Leave(ctx context.Context, communityID, userID primitive.ObjectID) error {
	if _, err := l.communities.GetByID(ctx, communityID); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrCommunityNotFound
		}
		return err
	}

	var deleted int64
	fellBack, err := txn.Run(ctx, l.db, l.log, func(ctx context.Context) error {
		var err error
		deleted, err = l.memberships.Remove(ctx, communityID, userID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrNoMembership
		}
		return l.communities.RemoveMember(ctx, communityID, userID)
	})
	if fellBack {
		l.repairMembers(ctx, communityID)
	}
	if err != nil {
		if !errors.Is(err, ErrNoMembership) {
			l.audit.Membership(ctx, audit.EventMemberLeft, communityID, userID, false, err.Error())
		}
		return err
	}

	l.audit.Membership(ctx, audit.EventMemberLeft, communityID, userID, true, "")
	return nil
}

// RoleOf returns the user's role in the community, or ErrNoMembership
// when no active membership exists.
func (l *Ledger) RoleOf(ctx context.Context, communityID, userID primitive.ObjectID) (string, error) {
	role, err := l.memberships.ActiveRole(ctx, communityID, userID)
	if err == mongo.ErrNoDocuments {
		return "", ErrNoMembership
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

// Reconcile recomputes a community's denormalized member list from the
// membership ledger and overwrites it. Safe to run at any time; joins
// and leaves that fell back to unguarded writes trigger it themselves,
// and the admin endpoint exposes it for manual repair.
func (l *Ledger) Reconcile(ctx context.Context, communityID primitive.ObjectID) ([]primitive.ObjectID, error) {
	if _, err := l.communities.GetByID(ctx, communityID); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}

	ids, err := l.memberships.ActiveUserIDs(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if err := l.communities.SetMembers(ctx, communityID, ids); err != nil {
		return nil, err
	}

	l.log.Info("reconciled community member list",
		zap.String("community_id", communityID.Hex()),
		zap.Int("members", len(ids)))
	l.audit.Record(ctx, audit.Event{
		Category:    audit.CategoryMembership,
		EventType:   audit.EventMembersRepaired,
		CommunityID: &communityID,
		Success:     true,
	})
	return ids, nil
}

// repairMembers converges the denormalized member list after a join or
// leave ran without a transaction. Best effort: the caller's result
// stands whether or not the repair lands, and the request context may
// already be dead (that failure is exactly what creates the divergence),
// so the repair gets its own deadline.
func (l *Ledger) repairMembers(ctx context.Context, communityID primitive.ObjectID) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Medium())
	defer cancel()

	ids, err := l.memberships.ActiveUserIDs(rctx, communityID)
	if err == nil {
		err = l.communities.SetMembers(rctx, communityID, ids)
	}
	if err != nil {
		l.log.Warn("member list repair after unguarded write failed",
			zap.String("community_id", communityID.Hex()),
			zap.Error(err))
		return
	}
	l.log.Debug("member list repaired after unguarded write",
		zap.String("community_id", communityID.Hex()),
		zap.Int("members", len(ids)))
}

// DeleteCommunity removes a community together with every membership it
// has. Only admins reach this; the authorization check happens in the
// handler layer.
func (l *Ledger) DeleteCommunity(ctx context.Context, communityID primitive.ObjectID) error {
	_, err := txn.Run(ctx, l.db, l.log, func(ctx context.Context) error {
		deleted, err := l.communities.Delete(ctx, communityID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrCommunityNotFound
		}
		_, err = l.memberships.DeleteByCommunity(ctx, communityID)
		return err
	})
	return err
}
