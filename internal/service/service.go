// Package service implements the fridgeshare.v1 Connect services.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/fridgeshare/internal/middleware"
	"github.com/mmynk/fridgeshare/internal/models"
	"github.com/mmynk/fridgeshare/internal/storage"
)

// caller is the authenticated user and the fridge a request targets.
type caller struct {
	user     *models.User
	fridgeID string
	members  []*models.User
}

// resolveCaller checks authentication and fridge membership. An empty
// fridgeID falls back to the user's active fridge.
func resolveCaller(ctx context.Context, store storage.Store, fridgeID string) (*caller, error) {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required"))
	}

	if fridgeID == "" {
		fridgeID = user.ActiveFridgeID
	}
	if fridgeID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("fridge_id is required: you have no active fridge"))
	}

	members, err := store.ListMembers(ctx, fridgeID)
	if err != nil {
		slog.Error("ListMembers failed", "fridge_id", fridgeID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if !isMember(user.ID, members) {
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("you must be a member of this fridge"))
	}

	return &caller{user: user, fridgeID: fridgeID, members: members}, nil
}

func isMember(userID string, members []*models.User) bool {
	for _, m := range members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// storeError maps a storage error to a Connect error.
func storeError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}
