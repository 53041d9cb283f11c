package middleware

import "context"

// Validator rejects malformed messages before any handler or transaction runs.
type Validator interface {
	Validate(ctx context.Context, message any) error
}

func Validation(v Validator) CommandMiddleware {
	return validatorGuard(v).forCommands()
}

func QueryValidation(v Validator) QueryMiddleware {
	return validatorGuard(v).forQueries()
}

func validatorGuard(v Validator) guard {
	if v == nil {
		panic("middleware: validator required")
	}
	return v.Validate
}
