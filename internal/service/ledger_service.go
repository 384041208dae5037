package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/fridgeshare/internal/ledger"
	"github.com/mmynk/fridgeshare/internal/storage"
	"github.com/mmynk/fridgeshare/pkg/api"
)

// LedgerService implements the Connect LedgerService
type LedgerService struct {
	api.UnimplementedLedgerServiceHandler
	store  storage.Store
	engine *ledger.Engine
}

// NewLedgerService creates a LedgerService. engine must read from store.
func NewLedgerService(store storage.Store, engine *ledger.Engine) *LedgerService {
	return &LedgerService{store: store, engine: engine}
}

// GetBalances returns every member's balance and the suggested payments.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	c, err := resolveCaller(ctx, s.store, req.Msg.FridgeID)
	if err != nil {
		return nil, err
	}

	report, err := s.engine.GetBalances(ctx, c.fridgeID)
	if err != nil {
		slog.Error("GetBalances failed", "fridge_id", c.fridgeID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&api.GetBalancesResponse{
		FridgeID:     c.fridgeID,
		Balances:     toAPIBalances(report),
		Transactions: toAPITransactions(report.Transactions),
	}), nil
}

// ClearUserBalance records settlements for everything the target user owes
// or is owed. Any member may clear any member's balance.
func (s *LedgerService) ClearUserBalance(ctx context.Context, req *connect.Request[api.ClearUserBalanceRequest]) (*connect.Response[api.ClearUserBalanceResponse], error) {
	if req.Msg.UserID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("user_id is required"))
	}

	c, err := resolveCaller(ctx, s.store, req.Msg.FridgeID)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.ClearUserBalance(ctx, c.fridgeID, req.Msg.UserID, c.user.ID)
	if errors.Is(err, ledger.ErrNotMember) {
		return nil, connect.NewError(connect.CodeNotFound, err)
	}
	if err != nil {
		slog.Error("ClearUserBalance failed", "fridge_id", c.fridgeID, "user_id", req.Msg.UserID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&api.ClearUserBalanceResponse{
		FridgeID:       c.fridgeID,
		AlreadySettled: result.AlreadySettled,
		Settlements:    toAPISettlements(result.Recorded),
		Balances:       toAPIBalances(result.Report),
		Transactions:   toAPITransactions(result.Report.Transactions),
	}), nil
}

// ListSettlements returns the fridge's settlement history, oldest first.
func (s *LedgerService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	c, err := resolveCaller(ctx, s.store, req.Msg.FridgeID)
	if err != nil {
		return nil, err
	}

	settlements, err := s.store.ListSettlements(ctx, c.fridgeID)
	if err != nil {
		slog.Error("ListSettlements failed", "fridge_id", c.fridgeID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&api.ListSettlementsResponse{
		Settlements: toAPISettlements(settlements),
	}), nil
}
