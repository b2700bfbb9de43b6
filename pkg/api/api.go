// Package api defines the familyspend.v1 RPC surface: service and procedure
// names, request and response messages, and the JSON codec both the server
// and the clients use.
package api

const (
	// AuthServiceName is the fully-qualified name of the AuthService service.
	AuthServiceName = "familyspend.v1.AuthService"
	// LedgerServiceName is the fully-qualified name of the LedgerService service.
	LedgerServiceName = "familyspend.v1.LedgerService"
)

// Procedure paths. Each is the HTTP path a Connect handler is mounted at.
const (
	AuthServiceSignUpProcedure         = "/" + AuthServiceName + "/SignUp"
	AuthServiceSignInProcedure         = "/" + AuthServiceName + "/SignIn"
	AuthServiceSignOutProcedure        = "/" + AuthServiceName + "/SignOut"
	AuthServiceCurrentAccountProcedure = "/" + AuthServiceName + "/CurrentAccount"

	LedgerServiceFetchMonthProcedure    = "/" + LedgerServiceName + "/FetchMonth"
	LedgerServiceSaveExpenseProcedure   = "/" + LedgerServiceName + "/SaveExpense"
	LedgerServiceDeleteExpenseProcedure = "/" + LedgerServiceName + "/DeleteExpense"
	LedgerServiceAddMemberProcedure     = "/" + LedgerServiceName + "/AddMember"
	LedgerServiceDeleteMemberProcedure  = "/" + LedgerServiceName + "/DeleteMember"
	LedgerServiceCategoriesProcedure    = "/" + LedgerServiceName + "/Categories"
)

// Error metadata keys. Ledger errors keep their detail across the wire in
// these headers so clients can rebuild the typed error.
const (
	DomainCodeHeader      = "X-Domain-Code"
	ValidationFieldHeader = "X-Validation-Field"
	PartialHeader         = "X-Partial"
)
