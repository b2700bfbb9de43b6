package client

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/familyspend/internal/calendar"
	"github.com/mmynk/familyspend/internal/dashboard"
	"github.com/mmynk/familyspend/internal/ledger"
	"github.com/mmynk/familyspend/pkg/api"
)

// LedgerClient calls LedgerService and returns ledger types. Errors are the
// same ValidationError, DomainError and RemoteError values the server saw.
type LedgerClient struct {
	fetchMonth    *connect.Client[api.FetchMonthRequest, api.MonthData]
	saveExpense   *connect.Client[api.SaveExpenseRequest, api.MonthData]
	deleteExpense *connect.Client[api.DeleteExpenseRequest, api.MonthData]
	addMember     *connect.Client[api.AddMemberRequest, api.MonthData]
	deleteMember  *connect.Client[api.DeleteMemberRequest, api.MonthData]
	categories    *connect.Client[api.CategoriesRequest, api.CategoriesResponse]
}

var _ dashboard.Backend = (*LedgerClient)(nil)

func newLedgerClient(httpClient connect.HTTPClient, baseURL string, opts []connect.ClientOption) *LedgerClient {
	return &LedgerClient{
		fetchMonth:    connect.NewClient[api.FetchMonthRequest, api.MonthData](httpClient, baseURL+api.LedgerServiceFetchMonthProcedure, opts...),
		saveExpense:   connect.NewClient[api.SaveExpenseRequest, api.MonthData](httpClient, baseURL+api.LedgerServiceSaveExpenseProcedure, opts...),
		deleteExpense: connect.NewClient[api.DeleteExpenseRequest, api.MonthData](httpClient, baseURL+api.LedgerServiceDeleteExpenseProcedure, opts...),
		addMember:     connect.NewClient[api.AddMemberRequest, api.MonthData](httpClient, baseURL+api.LedgerServiceAddMemberProcedure, opts...),
		deleteMember:  connect.NewClient[api.DeleteMemberRequest, api.MonthData](httpClient, baseURL+api.LedgerServiceDeleteMemberProcedure, opts...),
		categories:    connect.NewClient[api.CategoriesRequest, api.CategoriesResponse](httpClient, baseURL+api.LedgerServiceCategoriesProcedure, opts...),
	}
}

func monthData(op string, resp *connect.Response[api.MonthData], err error) (*ledger.MonthData, error) {
	if err != nil {
		return nil, fromConnectError(op, err)
	}
	return api.MonthDataFromAPI(resp.Msg), nil
}

func (c *LedgerClient) FetchMonth(ctx context.Context, window calendar.Window) (*ledger.MonthData, error) {
	resp, err := c.fetchMonth.CallUnary(ctx, connect.NewRequest(&api.FetchMonthRequest{Month: window}))
	return monthData("fetch month", resp, err)
}

func (c *LedgerClient) SaveExpense(ctx context.Context, window calendar.Window, in ledger.ExpenseInput) (*ledger.MonthData, error) {
	resp, err := c.saveExpense.CallUnary(ctx, connect.NewRequest(&api.SaveExpenseRequest{
		Month:    window,
		ID:       in.ID,
		MemberID: in.MemberID,
		Category: in.Category,
		Amount:   in.Amount,
		Note:     in.Note,
		Date:     in.Date,
	}))
	return monthData("save expense", resp, err)
}

func (c *LedgerClient) DeleteExpense(ctx context.Context, window calendar.Window, id int64) (*ledger.MonthData, error) {
	resp, err := c.deleteExpense.CallUnary(ctx, connect.NewRequest(&api.DeleteExpenseRequest{Month: window, ID: id}))
	return monthData("delete expense", resp, err)
}

func (c *LedgerClient) AddMember(ctx context.Context, window calendar.Window, in ledger.MemberInput) (*ledger.MonthData, error) {
	resp, err := c.addMember.CallUnary(ctx, connect.NewRequest(&api.AddMemberRequest{
		Month: window,
		Name:  in.Name,
		Email: in.Email,
		Role:  string(in.Role),
	}))
	return monthData("add member", resp, err)
}

func (c *LedgerClient) DeleteMember(ctx context.Context, window calendar.Window, id int64) (*ledger.MonthData, error) {
	resp, err := c.deleteMember.CallUnary(ctx, connect.NewRequest(&api.DeleteMemberRequest{Month: window, ID: id}))
	return monthData("delete member", resp, err)
}

func (c *LedgerClient) Categories(ctx context.Context, window calendar.Window) ([]string, error) {
	resp, err := c.categories.CallUnary(ctx, connect.NewRequest(&api.CategoriesRequest{Month: window}))
	if err != nil {
		return nil, fromConnectError("categories", err)
	}
	return resp.Msg.Categories, nil
}
