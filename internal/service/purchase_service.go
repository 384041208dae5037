package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/fridgeshare/internal/calculator"
	"github.com/mmynk/fridgeshare/internal/clock"
	"github.com/mmynk/fridgeshare/internal/models"
	"github.com/mmynk/fridgeshare/internal/storage"
	"github.com/mmynk/fridgeshare/pkg/api"
)

// PurchaseService implements the Connect PurchaseService
type PurchaseService struct {
	api.UnimplementedPurchaseServiceHandler
	store storage.Store
	clock clock.Clock
}

// NewPurchaseService creates a new PurchaseService with the given storage backend.
func NewPurchaseService(store storage.Store, clk clock.Clock) *PurchaseService {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &PurchaseService{store: store, clock: clk}
}

// ValidatePurchase checks title, price and sharers of a new purchase
// against the fridge members.
func ValidatePurchase(req *api.AddPurchaseRequest, members []*models.User) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if math.IsNaN(req.Price) || math.IsInf(req.Price, 0) || req.Price < 0 {
		return fmt.Errorf("price must be a non-negative amount, got %v", req.Price)
	}
	for _, id := range req.SharedBy {
		if !isMember(id, members) {
			return fmt.Errorf("shared_by user '%s' is not a member of this fridge", id)
		}
	}
	return nil
}

// AddPurchase logs an item bought by the caller.
func (s *PurchaseService) AddPurchase(ctx context.Context, req *connect.Request[api.AddPurchaseRequest]) (*connect.Response[api.AddPurchaseResponse], error) {
	c, err := resolveCaller(ctx, s.store, req.Msg.FridgeID)
	if err != nil {
		return nil, err
	}

	if err := ValidatePurchase(req.Msg, c.members); err != nil {
		slog.Error("AddPurchase validation failed", "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	p := &models.Purchase{
		FridgeID:  c.fridgeID,
		Title:     strings.TrimSpace(req.Msg.Title),
		Price:     calculator.Round2(req.Msg.Price),
		AddedBy:   c.user.ID,
		SharedBy:  req.Msg.SharedBy,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.CreatePurchase(ctx, p); err != nil {
		slog.Error("CreatePurchase failed", "fridge_id", c.fridgeID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Purchase added", "fridge_id", c.fridgeID, "purchase_id", p.ID, "price", p.Price)
	return connect.NewResponse(&api.AddPurchaseResponse{Purchase: toAPIPurchase(p)}), nil
}

// ListPurchases returns the fridge's purchases, oldest first.
func (s *PurchaseService) ListPurchases(ctx context.Context, req *connect.Request[api.ListPurchasesRequest]) (*connect.Response[api.ListPurchasesResponse], error) {
	c, err := resolveCaller(ctx, s.store, req.Msg.FridgeID)
	if err != nil {
		return nil, err
	}

	purchases, err := s.store.ListPurchases(ctx, c.fridgeID)
	if err != nil {
		slog.Error("ListPurchases failed", "fridge_id", c.fridgeID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]*api.Purchase, len(purchases))
	for i, p := range purchases {
		out[i] = toAPIPurchase(p)
	}
	return connect.NewResponse(&api.ListPurchasesResponse{Purchases: out}), nil
}

// DeletePurchase removes a purchase. Any member of its fridge may delete it.
func (s *PurchaseService) DeletePurchase(ctx context.Context, req *connect.Request[api.DeletePurchaseRequest]) (*connect.Response[api.DeletePurchaseResponse], error) {
	if req.Msg.PurchaseID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("purchase_id is required"))
	}

	// Outsiders get the same NotFound as for a missing ID, so purchase IDs of
	// other fridges cannot be probed.
	notFound := connect.NewError(connect.CodeNotFound,
		fmt.Errorf("purchase %s: %w", req.Msg.PurchaseID, storage.ErrNotFound))

	p, err := s.store.GetPurchase(ctx, req.Msg.PurchaseID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFound
	}
	if err != nil {
		slog.Error("GetPurchase failed", "purchase_id", req.Msg.PurchaseID, "error", err)
		return nil, storeError(err)
	}

	if _, err := resolveCaller(ctx, s.store, p.FridgeID); err != nil {
		if connect.CodeOf(err) == connect.CodePermissionDenied {
			return nil, notFound
		}
		return nil, err
	}

	if err := s.store.DeletePurchase(ctx, p.ID); err != nil {
		slog.Error("DeletePurchase failed", "purchase_id", p.ID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Purchase deleted", "fridge_id", p.FridgeID, "purchase_id", p.ID)
	return connect.NewResponse(&api.DeletePurchaseResponse{}), nil
}
