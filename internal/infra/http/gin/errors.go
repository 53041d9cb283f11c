package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"gowaay/internal/app/commands"
	bookingapp "gowaay/internal/app/handlers/booking"
	paymentsapp "gowaay/internal/app/handlers/payments"
	roomsapp "gowaay/internal/app/handlers/rooms"
	uploadsapp "gowaay/internal/app/handlers/uploads"
	"gowaay/internal/app/middleware"
	"gowaay/internal/app/policies"
	"gowaay/internal/app/queries"
	authsvc "gowaay/internal/app/services/auth"
	domainauth "gowaay/internal/domain/auth"
	domainbooking "gowaay/internal/domain/booking"
	domainhosts "gowaay/internal/domain/hosts"
	"gowaay/internal/domain/ledger"
	domainpayments "gowaay/internal/domain/payments"
	"gowaay/internal/domain/pricing"
	domainrooms "gowaay/internal/domain/rooms"
	"gowaay/internal/domain/shared/daterange"
	"gowaay/internal/domain/shared/money"
	domainuser "gowaay/internal/domain/user"
	"gowaay/internal/infra/imageproc"
	"gowaay/internal/infra/validation"
)

type errorRule struct {
	status  int
	targets []error
}

// errorRules is checked in order; the first rule with a matching target wins.
var errorRules = []errorRule{
	{http.StatusServiceUnavailable, []error{policies.ErrGatewayUnavailable}},
	{http.StatusUnauthorized, []error{
		middleware.ErrUnauthenticated,
		authsvc.ErrInvalidCredentials,
		domainauth.ErrSessionNotFound,
		domainauth.ErrSessionExpired,
	}},
	{http.StatusForbidden, []error{
		middleware.ErrForbidden,
		authsvc.ErrUserBlocked,
		roomsapp.ErrNotHost,
		roomsapp.ErrHostNotActive,
		roomsapp.ErrRoomNotOwned,
		domainrooms.ErrHostNotReassignable,
	}},
	{http.StatusNotFound, []error{
		domainrooms.ErrNotFound,
		domainhosts.ErrNotFound,
		domainbooking.ErrNotFound,
		domainpayments.ErrNotFound,
		domainuser.ErrNotFound,
		bookingapp.ErrBookingNotOwned,
		paymentsapp.ErrNotBookingOwner,
	}},
	{http.StatusConflict, []error{
		domainuser.ErrEmailAlreadyUsed,
		domainhosts.ErrAlreadyApplied,
		domainhosts.ErrSystemHostLocked,
		domainbooking.ErrInvalidState,
		domainbooking.ErrAlreadyPaid,
		domainbooking.ErrDatesUnavailable,
		domainbooking.ErrNotAwaitingReview,
		domainbooking.ErrConcurrentUpdate,
		domainrooms.ErrConcurrentUpdate,
		domainhosts.ErrConcurrentUpdate,
		domainpayments.ErrConcurrentUpdate,
		domainrooms.ErrHostNotApproved,
		domainrooms.ErrNotBookable,
		ledger.ErrAlreadyCompleted,
		ledger.ErrBookingPaid,
		ledger.ErrNotAwaitingVerification,
		paymentsapp.ErrNoPendingManualPayment,
	}},
	{http.StatusRequestEntityTooLarge, []error{imageproc.ErrTooLarge}},
	{http.StatusBadRequest, []error{
		validation.ErrInvalid,
		authsvc.ErrPasswordTooShort,
		domainuser.ErrEmailRequired,
		domainuser.ErrEmailInvalid,
		domainuser.ErrNameRequired,
		domainhosts.ErrDisplayName,
		domainhosts.ErrPhoneRequired,
		domainhosts.ErrLocationRequired,
		domainrooms.ErrTitleRequired,
		domainrooms.ErrDescriptionMissing,
		domainrooms.ErrAddressRequired,
		domainrooms.ErrLocationRequired,
		domainrooms.ErrInvalidGuests,
		domainbooking.ErrInvalidGuests,
		domainbooking.ErrGuestsExceedRoom,
		domainbooking.ErrCheckInInPast,
		domainbooking.ErrTxnIDRequired,
		domainbooking.ErrAmountMismatch,
		daterange.ErrInvalidRange,
		domainpayments.ErrInvalidMethod,
		domainpayments.ErrOrderRequired,
		money.ErrInvalidCurrency,
		money.ErrCurrencyMismatch,
		money.ErrNonPositive,
		pricing.ErrInvalidBasePrice,
		pricing.ErrInvalidCommission,
		paymentsapp.ErrMissingParams,
		uploadsapp.ErrNoImage,
		uploadsapp.ErrURLRequired,
		imageproc.ErrUnsupported,
		policies.ErrForeignImageURL,
	}},
}

func statusFor(err error) int {
	for _, rule := range errorRules {
		for _, target := range rule.targets {
			if errors.Is(err, target) {
				return rule.status
			}
		}
	}
	return http.StatusInternalServerError
}

// respondError writes the mapped status. Internal errors are logged and never echoed.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		}
		if status == http.StatusServiceUnavailable {
			respondFailure(c, status, "payment gateway unavailable, please try again")
			return
		}
		if errors.Is(err, commands.ErrNilBus) || errors.Is(err, queries.ErrNilBus) {
			respondFailure(c, http.StatusServiceUnavailable, "service unavailable")
			return
		}
		respondFailure(c, status, "internal server error")
		return
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(status, envelope{Success: false, Message: "validation failed", Errors: verr.Fields})
		return
	}
	respondFailure(c, status, err.Error())
}
