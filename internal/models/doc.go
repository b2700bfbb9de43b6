// Package models defines the core domain models for familyspend.
//
// # Models
//
//   - Account: the authenticated owner. Every other row carries its ID as user_id.
//   - Session: a server-side record backing one issued session token.
//   - Member: a family participant that expenses are attributed to.
//   - Expense: a single recorded spend event.
//
// # Ownership
//
// Members and expenses are always scoped to one account. Nothing is shared
// across accounts, and relationships are expressed with IDs rather than
// pointers.
//
// # Denormalization
//
// Expense.MemberName is a copy of the payer's name taken when the expense is
// written. It is refreshed whenever the expense is saved or reassigned, but a
// member rename alone does not rewrite past expenses.
package models
