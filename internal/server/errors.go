package server

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"google.golang.org/genproto/googleapis/rpc/errdetails"

	"github.com/at-ishikawa/sigmareview/internal/review"
)

// ViewStateHeader carries the view state of failed lookups.
const ViewStateHeader = "Sigma-View-State"

func invalidArgument(field, description string) error {
	return withFieldViolations(
		connect.NewError(connect.CodeInvalidArgument, errors.New(description)),
		review.FieldViolation{Field: field, Description: description},
	)
}

func withFieldViolations(connectErr *connect.Error, violations ...review.FieldViolation) *connect.Error {
	fieldViolations := make([]*errdetails.BadRequest_FieldViolation, 0, len(violations))
	for _, v := range violations {
		fieldViolations = append(fieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       v.Field,
			Description: v.Description,
		})
	}
	if detail, detailErr := connect.NewErrorDetail(&errdetails.BadRequest{
		FieldViolations: fieldViolations,
	}); detailErr == nil {
		connectErr.AddDetail(detail)
	}
	return connectErr
}

func notFound(format string, args ...any) error {
	connectErr := connect.NewError(connect.CodeNotFound, fmt.Errorf(format, args...))
	connectErr.Meta().Set(ViewStateHeader, string(ViewStateNotFound))
	return connectErr
}

// toConnectError maps store and backend errors to connect codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	var validationErr *review.ValidationError
	if errors.As(err, &validationErr) {
		return withFieldViolations(connect.NewError(connect.CodeInvalidArgument, err), validationErr.Violations...)
	}
	return connect.NewError(connect.CodeInternal, err)
}
