package mid

import (
	"context"
	"errors"
	"net/http"

	"github.com/intradir/intradir/app/sdk/errs"
	"github.com/intradir/intradir/app/sdk/metrics"
	"github.com/intradir/intradir/business/sdk/web"
	"github.com/intradir/intradir/foundation/logger"
)

// Errors handles errors coming out of the call chain. It detects normal
// application errors which are used to respond to the client in a uniform
// way. Unexpected errors (status >= 500) are logged.
func Errors(log *logger.Logger) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)

			err := checkIsError(resp)
			if err == nil {
				return resp
			}

			var appErr *errs.Error
			if !errors.As(err, &appErr) {
				appErr = errs.Newf(errs.Unknown, "unknown error: %s", err)
			}

			log.Error(ctx, "handled error during request",
				"err", err,
				"source_err_file", appErr.FileName,
				"source_err_func", appErr.FuncName)

			if appErr.Code == errs.InternalOnlyLog {
				appErr = errs.Newf(errs.Internal, "internal server error")
			}

			metrics.AddErrors(ctx)

			return appErr
		}

		return h
	}

	return m
}
