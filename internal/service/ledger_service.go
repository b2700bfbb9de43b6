package service

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/familyspend/internal/calendar"
	"github.com/mmynk/familyspend/internal/ledger"
	"github.com/mmynk/familyspend/internal/middleware"
	"github.com/mmynk/familyspend/internal/models"
	"github.com/mmynk/familyspend/pkg/api"
)

// LedgerService implements the LedgerService RPC interface. Every call
// expects the session attached by middleware.RequireAuth.
type LedgerService struct {
	ledger *ledger.Ledger
	now    func() time.Time
}

// NewLedgerService creates a LedgerService over the given ledger.
func NewLedgerService(l *ledger.Ledger) *LedgerService {
	return &LedgerService{ledger: l, now: time.Now}
}

// NewLedgerServiceHandler builds an HTTP handler serving every LedgerService
// procedure. It returns the path to mount it on.
func NewLedgerServiceHandler(svc *LedgerService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{api.WithJSON()}, opts...)

	handlers := map[string]http.Handler{
		api.LedgerServiceFetchMonthProcedure:    connect.NewUnaryHandler(api.LedgerServiceFetchMonthProcedure, svc.FetchMonth, opts...),
		api.LedgerServiceSaveExpenseProcedure:   connect.NewUnaryHandler(api.LedgerServiceSaveExpenseProcedure, svc.SaveExpense, opts...),
		api.LedgerServiceDeleteExpenseProcedure: connect.NewUnaryHandler(api.LedgerServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...),
		api.LedgerServiceAddMemberProcedure:     connect.NewUnaryHandler(api.LedgerServiceAddMemberProcedure, svc.AddMember, opts...),
		api.LedgerServiceDeleteMemberProcedure:  connect.NewUnaryHandler(api.LedgerServiceDeleteMemberProcedure, svc.DeleteMember, opts...),
		api.LedgerServiceCategoriesProcedure:    connect.NewUnaryHandler(api.LedgerServiceCategoriesProcedure, svc.Categories, opts...),
	}

	return "/" + api.LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// window resolves a zero month to the current one.
func (s *LedgerService) window(w calendar.Window) calendar.Window {
	if w.IsZero() {
		return calendar.Current(s.now())
	}
	return w
}

// bound returns the ledger fixed to the request's session.
func (s *LedgerService) bound(ctx context.Context) *ledger.Bound {
	return s.ledger.Bind(middleware.GetSession(ctx))
}

func monthResponse(data *ledger.MonthData, err error) (*connect.Response[api.MonthData], error) {
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(api.MonthDataToAPI(data)), nil
}

// FetchMonth returns the members and expenses of one month.
func (s *LedgerService) FetchMonth(ctx context.Context, req *connect.Request[api.FetchMonthRequest]) (*connect.Response[api.MonthData], error) {
	return monthResponse(s.bound(ctx).FetchMonth(ctx, s.window(req.Msg.Month)))
}

// SaveExpense creates an expense, or updates it when an ID is given.
func (s *LedgerService) SaveExpense(ctx context.Context, req *connect.Request[api.SaveExpenseRequest]) (*connect.Response[api.MonthData], error) {
	in := ledger.ExpenseInput{
		ID:       req.Msg.ID,
		MemberID: req.Msg.MemberID,
		Category: req.Msg.Category,
		Amount:   req.Msg.Amount,
		Note:     req.Msg.Note,
		Date:     req.Msg.Date,
	}
	return monthResponse(s.bound(ctx).SaveExpense(ctx, s.window(req.Msg.Month), in))
}

func (s *LedgerService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.MonthData], error) {
	return monthResponse(s.bound(ctx).DeleteExpense(ctx, s.window(req.Msg.Month), req.Msg.ID))
}

func (s *LedgerService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.MonthData], error) {
	in := ledger.MemberInput{
		Name:  req.Msg.Name,
		Email: req.Msg.Email,
		Role:  models.Role(req.Msg.Role),
	}
	return monthResponse(s.bound(ctx).AddMember(ctx, s.window(req.Msg.Month), in))
}

// DeleteMember reassigns the member's expenses to the Admin, then removes the member.
func (s *LedgerService) DeleteMember(ctx context.Context, req *connect.Request[api.DeleteMemberRequest]) (*connect.Response[api.MonthData], error) {
	return monthResponse(s.bound(ctx).DeleteMember(ctx, s.window(req.Msg.Month), req.Msg.ID))
}

// Categories lists the suggested categories plus any custom ones used in the month.
func (s *LedgerService) Categories(ctx context.Context, req *connect.Request[api.CategoriesRequest]) (*connect.Response[api.CategoriesResponse], error) {
	data, err := s.bound(ctx).FetchMonth(ctx, s.window(req.Msg.Month))
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CategoriesResponse{Categories: ledger.Categories(data)}), nil
}
