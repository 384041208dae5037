package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	// LedgerServiceName is the fully-qualified name of the LedgerService service.
	LedgerServiceName = "fridgeshare.v1.LedgerService"
	// PurchaseServiceName is the fully-qualified name of the PurchaseService service.
	PurchaseServiceName = "fridgeshare.v1.PurchaseService"
)

// Procedure paths for every RPC.
const (
	LedgerServiceGetBalancesProcedure      = "/fridgeshare.v1.LedgerService/GetBalances"
	LedgerServiceClearUserBalanceProcedure = "/fridgeshare.v1.LedgerService/ClearUserBalance"
	LedgerServiceListSettlementsProcedure  = "/fridgeshare.v1.LedgerService/ListSettlements"

	PurchaseServiceAddPurchaseProcedure    = "/fridgeshare.v1.PurchaseService/AddPurchase"
	PurchaseServiceListPurchasesProcedure  = "/fridgeshare.v1.PurchaseService/ListPurchases"
	PurchaseServiceDeletePurchaseProcedure = "/fridgeshare.v1.PurchaseService/DeletePurchase"
)

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
}

// LedgerServiceClient is a client for the fridgeshare.v1.LedgerService service.
type LedgerServiceClient interface {
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	ClearUserBalance(context.Context, *connect.Request[ClearUserBalanceRequest]) (*connect.Response[ClearUserBalanceResponse], error)
	ListSettlements(context.Context, *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error)
}

// NewLedgerServiceClient constructs a client for the fridgeshare.v1.LedgerService
// service. The JSON codec is always installed.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &ledgerServiceClient{
		getBalances: connect.NewClient[GetBalancesRequest, GetBalancesResponse](
			httpClient, baseURL+LedgerServiceGetBalancesProcedure, opts...),
		clearUserBalance: connect.NewClient[ClearUserBalanceRequest, ClearUserBalanceResponse](
			httpClient, baseURL+LedgerServiceClearUserBalanceProcedure, opts...),
		listSettlements: connect.NewClient[ListSettlementsRequest, ListSettlementsResponse](
			httpClient, baseURL+LedgerServiceListSettlementsProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	getBalances      *connect.Client[GetBalancesRequest, GetBalancesResponse]
	clearUserBalance *connect.Client[ClearUserBalanceRequest, ClearUserBalanceResponse]
	listSettlements  *connect.Client[ListSettlementsRequest, ListSettlementsResponse]
}

func (c *ledgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ClearUserBalance(ctx context.Context, req *connect.Request[ClearUserBalanceRequest]) (*connect.Response[ClearUserBalanceResponse], error) {
	return c.clearUserBalance.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListSettlements(ctx context.Context, req *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

// LedgerServiceHandler is implemented by the fridgeshare.v1.LedgerService server.
type LedgerServiceHandler interface {
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	ClearUserBalance(context.Context, *connect.Request[ClearUserBalanceRequest]) (*connect.Response[ClearUserBalanceResponse], error)
	ListSettlements(context.Context, *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	getBalances := connect.NewUnaryHandler(LedgerServiceGetBalancesProcedure, svc.GetBalances, opts...)
	clearUserBalance := connect.NewUnaryHandler(LedgerServiceClearUserBalanceProcedure, svc.ClearUserBalance, opts...)
	listSettlements := connect.NewUnaryHandler(LedgerServiceListSettlementsProcedure, svc.ListSettlements, opts...)
	return "/" + LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LedgerServiceGetBalancesProcedure:
			getBalances.ServeHTTP(w, r)
		case LedgerServiceClearUserBalanceProcedure:
			clearUserBalance.ServeHTTP(w, r)
		case LedgerServiceListSettlementsProcedure:
			listSettlements.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedLedgerServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLedgerServiceHandler struct{}

func (UnimplementedLedgerServiceHandler) GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("fridgeshare.v1.LedgerService.GetBalances is not implemented"))
}

func (UnimplementedLedgerServiceHandler) ClearUserBalance(context.Context, *connect.Request[ClearUserBalanceRequest]) (*connect.Response[ClearUserBalanceResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("fridgeshare.v1.LedgerService.ClearUserBalance is not implemented"))
}

func (UnimplementedLedgerServiceHandler) ListSettlements(context.Context, *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("fridgeshare.v1.LedgerService.ListSettlements is not implemented"))
}

// PurchaseServiceClient is a client for the fridgeshare.v1.PurchaseService service.
type PurchaseServiceClient interface {
	AddPurchase(context.Context, *connect.Request[AddPurchaseRequest]) (*connect.Response[AddPurchaseResponse], error)
	ListPurchases(context.Context, *connect.Request[ListPurchasesRequest]) (*connect.Response[ListPurchasesResponse], error)
	DeletePurchase(context.Context, *connect.Request[DeletePurchaseRequest]) (*connect.Response[DeletePurchaseResponse], error)
}

// NewPurchaseServiceClient constructs a client for the
// fridgeshare.v1.PurchaseService service.
func NewPurchaseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PurchaseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &purchaseServiceClient{
		addPurchase: connect.NewClient[AddPurchaseRequest, AddPurchaseResponse](
			httpClient, baseURL+PurchaseServiceAddPurchaseProcedure, opts...),
		listPurchases: connect.NewClient[ListPurchasesRequest, ListPurchasesResponse](
			httpClient, baseURL+PurchaseServiceListPurchasesProcedure, opts...),
		deletePurchase: connect.NewClient[DeletePurchaseRequest, DeletePurchaseResponse](
			httpClient, baseURL+PurchaseServiceDeletePurchaseProcedure, opts...),
	}
}

type purchaseServiceClient struct {
	addPurchase    *connect.Client[AddPurchaseRequest, AddPurchaseResponse]
	listPurchases  *connect.Client[ListPurchasesRequest, ListPurchasesResponse]
	deletePurchase *connect.Client[DeletePurchaseRequest, DeletePurchaseResponse]
}

func (c *purchaseServiceClient) AddPurchase(ctx context.Context, req *connect.Request[AddPurchaseRequest]) (*connect.Response[AddPurchaseResponse], error) {
	return c.addPurchase.CallUnary(ctx, req)
}

func (c *purchaseServiceClient) ListPurchases(ctx context.Context, req *connect.Request[ListPurchasesRequest]) (*connect.Response[ListPurchasesResponse], error) {
	return c.listPurchases.CallUnary(ctx, req)
}

func (c *purchaseServiceClient) DeletePurchase(ctx context.Context, req *connect.Request[DeletePurchaseRequest]) (*connect.Response[DeletePurchaseResponse], error) {
	return c.deletePurchase.CallUnary(ctx, req)
}

// PurchaseServiceHandler is implemented by the fridgeshare.v1.PurchaseService server.
type PurchaseServiceHandler interface {
	AddPurchase(context.Context, *connect.Request[AddPurchaseRequest]) (*connect.Response[AddPurchaseResponse], error)
	ListPurchases(context.Context, *connect.Request[ListPurchasesRequest]) (*connect.Response[ListPurchasesResponse], error)
	DeletePurchase(context.Context, *connect.Request[DeletePurchaseRequest]) (*connect.Response[DeletePurchaseResponse], error)
}

// NewPurchaseServiceHandler builds an HTTP handler from the service
// implementation.
func NewPurchaseServiceHandler(svc PurchaseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	addPurchase := connect.NewUnaryHandler(PurchaseServiceAddPurchaseProcedure, svc.AddPurchase, opts...)
	listPurchases := connect.NewUnaryHandler(PurchaseServiceListPurchasesProcedure, svc.ListPurchases, opts...)
	deletePurchase := connect.NewUnaryHandler(PurchaseServiceDeletePurchaseProcedure, svc.DeletePurchase, opts...)
	return "/" + PurchaseServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PurchaseServiceAddPurchaseProcedure:
			addPurchase.ServeHTTP(w, r)
		case PurchaseServiceListPurchasesProcedure:
			listPurchases.ServeHTTP(w, r)
		case PurchaseServiceDeletePurchaseProcedure:
			deletePurchase.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedPurchaseServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedPurchaseServiceHandler struct{}

func (UnimplementedPurchaseServiceHandler) AddPurchase(context.Context, *connect.Request[AddPurchaseRequest]) (*connect.Response[AddPurchaseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("fridgeshare.v1.PurchaseService.AddPurchase is not implemented"))
}

func (UnimplementedPurchaseServiceHandler) ListPurchases(context.Context, *connect.Request[ListPurchasesRequest]) (*connect.Response[ListPurchasesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("fridgeshare.v1.PurchaseService.ListPurchases is not implemented"))
}

func (UnimplementedPurchaseServiceHandler) DeletePurchase(context.Context, *connect.Request[DeletePurchaseRequest]) (*connect.Response[DeletePurchaseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("fridgeshare.v1.PurchaseService.DeletePurchase is not implemented"))
}
