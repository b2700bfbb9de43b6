package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/familyspend/internal/ledger"
	"github.com/mmynk/familyspend/pkg/api"
)

// toConnectError maps a ledger error onto a Connect status, keeping the
// field or domain code in the error metadata.
func toConnectError(err error) error {
	var (
		verr *ledger.ValidationError
		derr *ledger.DomainError
		rerr *ledger.RemoteError
	)

	switch {
	case errors.Is(err, ledger.ErrNoSession):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.As(err, &verr):
		cerr := connect.NewError(connect.CodeInvalidArgument, err)
		cerr.Meta().Set(api.ValidationFieldHeader, verr.Field)
		return cerr
	case errors.As(err, &derr):
		cerr := connect.NewError(connect.CodeFailedPrecondition, err)
		cerr.Meta().Set(api.DomainCodeHeader, derr.Code)
		return cerr
	case errors.As(err, &rerr) && rerr.NotFound:
		return connect.NewError(connect.CodeNotFound, err)
	case errors.As(err, &rerr) && rerr.Partial:
		cerr := connect.NewError(connect.CodeInternal, err)
		cerr.Meta().Set(api.PartialHeader, "true")
		return cerr
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
