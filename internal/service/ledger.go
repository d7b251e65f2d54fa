package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/vedran77/skillbarter/internal/domain"
	"github.com/vedran77/skillbarter/internal/repository"
)

// authorize is the single gate every ledger, feed and message mutation
// passes before it writes anything.
func authorize(record domain.Party, actingID uuid.UUID, deny error, allowed ...domain.Role) error {
	if !domain.Authorize(record, actingID, allowed...) {
		return deny
	}
	return nil
}

// mirrorOp is one write to a user's mirror collection.
type mirrorOp struct {
	userID uuid.UUID
	mirror domain.Mirror
	ref    uuid.UUID
	pull   bool
}

func push(userID uuid.UUID, mirror domain.Mirror, ref uuid.UUID) mirrorOp {
	return mirrorOp{userID: userID, mirror: mirror, ref: ref}
}

func pull(userID uuid.UUID, mirror domain.Mirror, ref uuid.UUID) mirrorOp {
	return mirrorOp{userID: userID, mirror: mirror, ref: ref, pull: true}
}

// applyMirrors runs ops in order. It must be called inside the transaction
// that wrote the ledger record so a failed op discards the whole mutation.
// Pulling from a user that no longer exists is a no-op; pushing to one fails
// with ErrUserNotFound.
func applyMirrors(ctx context.Context, users repository.UserRepository, ops ...mirrorOp) error {
	var ids []uuid.UUID
	for _, op := range ops {
		if !slices.Contains(ids, op.userID) {
			ids = append(ids, op.userID)
		}
	}
	if err := lockUsers(ctx, users, ids...); err != nil {
		return err
	}

	for _, op := range ops {
		if op.pull {
			err := users.PullMirror(ctx, op.userID, op.mirror, op.ref)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("pulling %s from %s of user %s: %w", op.ref, op.mirror, op.userID, err)
			}
			continue
		}

		err := users.PushMirror(ctx, op.userID, op.mirror, op.ref)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("pushing %s to %s of user %s: %w", op.ref, op.mirror, op.userID, err)
		}
	}
	return nil
}

// lockUsers takes the row locks of every user a mutation touches before it
// reads or writes any of them. Opposite-direction mutations between the same
// pair then queue up instead of deadlocking.
func lockUsers(ctx context.Context, users repository.UserRepository, ids ...uuid.UUID) error {
	if err := users.LockUsers(ctx, ids...); err != nil {
		return fmt.Errorf("locking users: %w", err)
	}
	return nil
}
