package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/logger"
	"bikerental-backend/internal/metrics"
	"bikerental-backend/internal/payment"
	"bikerental-backend/internal/pricing"
	"bikerental-backend/internal/receipt"
	"bikerental-backend/internal/repository"
	"bikerental-backend/internal/security"
)

type bookingService struct {
	bikeRepo    repository.BikeRepository
	bookingRepo repository.BookingRepository
	ledgerRepo  repository.LedgerRepository
	noteRepo    repository.NotificationRepository
	gateway     payment.Gateway
	emailSvc    EmailService
	policy      pricing.RentalPolicyConfig
	now         func() time.Time
}

func NewBookingService(
	bikeRepo repository.BikeRepository,
	bookingRepo repository.BookingRepository,
	ledgerRepo repository.LedgerRepository,
	noteRepo repository.NotificationRepository,
	gateway payment.Gateway,
	emailSvc EmailService,
	policy pricing.RentalPolicyConfig,
) BookingService {
	return &bookingService{
		bikeRepo:    bikeRepo,
		bookingRepo: bookingRepo,
		ledgerRepo:  ledgerRepo,
		noteRepo:    noteRepo,
		gateway:     gateway,
		emailSvc:    emailSvc,
		policy:      policy,
		now:         time.Now,
	}
}

func (s *bookingService) getBike(ctx context.Context, id int32) (*domain.Bike, error) {
	bike, err := s.bikeRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrBikeNotFound, id)
	}
	return bike, err
}

// load fetches a booking the caller is allowed to see.
func (s *bookingService) load(ctx context.Context, caller *security.Identity, id int32) (*domain.Booking, error) {
	if caller == nil {
		return nil, ErrForbidden
	}
	b, err := s.bookingRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrBookingNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if b.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *bookingService) Quote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	bike, err := s.getBike(ctx, req.BikeID)
	if err != nil {
		return nil, err
	}
	est, err := pricing.Estimate(pricing.TimeSpan{Start: req.StartTime, End: req.EndTime}, pricing.RateSheet{HourlyRate: bike.HourlyRate})
	if err != nil {
		return nil, err
	}
	split, err := pricing.Apportion(s.policy.Deposit, est.Price)
	if err != nil {
		return nil, err
	}
	metrics.IncQuote()
	return &Quote{BikeID: bike.ID, HourlyRate: bike.HourlyRate, Estimate: est, Deposit: split}, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, caller *security.Identity, req CreateBookingRequest) (*domain.Booking, *payment.ChargeResult, error) {
	logger.EnterMethod("bookingService.CreateBooking", "bikeID", req.BikeID, "start", req.StartTime, "end", req.EndTime)
	if caller == nil {
		return nil, nil, ErrForbidden
	}

	bike, err := s.getBike(ctx, req.BikeID)
	if err != nil {
		return nil, nil, err
	}
	if bike.Status != domain.BikeStatusAvailable {
		return nil, nil, fmt.Errorf("%w: bike %d is %s", ErrBikeUnavailable, bike.ID, bike.Status)
	}
	if req.StartTime.Before(s.now().Add(-s.policy.GracePeriod)) {
		return nil, nil, fmt.Errorf("%w: start time is in the past", pricing.ErrInvalidRange)
	}

	span := pricing.TimeSpan{Start: req.StartTime, End: req.EndTime}
	est, err := pricing.Estimate(span, pricing.RateSheet{HourlyRate: bike.HourlyRate})
	if err != nil {
		return nil, nil, err
	}
	split, err := pricing.Apportion(s.policy.Deposit, est.Price)
	if err != nil {
		return nil, nil, err
	}

	b := &domain.Booking{
		Reference:       uuid.New().String(),
		BikeID:          bike.ID,
		UserID:          caller.UserID,
		UserEmail:       caller.Email,
		StartTime:       req.StartTime.UTC(),
		EndTime:         req.EndTime.UTC(),
		BilledHours:     est.BillableHours,
		HourlyRate:      bike.HourlyRate,
		TotalPrice:      est.Price,
		DepositAmount:   split.DepositAmount,
		PlatformFee:     split.PlatformFee,
		OwnerShare:      split.OwnerShare,
		RemainingAmount: split.BalanceDueAtReturn,
		Status:          domain.BookingStatusPendingPayment,
	}
	if err := s.bookingRepo.Reserve(ctx, b); err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			metrics.IncBookingConflict()
			return nil, nil, ErrBookingConflict
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %d", ErrBikeNotFound, bike.ID)
		}
		logger.ExitMethodWithError("bookingService.CreateBooking", err)
		return nil, nil, err
	}

	charge, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		BookingID:   b.ID,
		Reference:   b.Reference,
		Amount:      b.DepositAmount,
		PayerEmail:  b.UserEmail,
		Description: fmt.Sprintf("Deposit for %s", bike.Name),
	})
	if err != nil {
		b.Status = domain.BookingStatusCancelled
		if uerr := s.bookingRepo.Update(ctx, b); uerr != nil {
			logger.Error("Failed to release booking after payment failure", "bookingID", b.ID, "error", uerr)
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	b.PaymentRef = charge.PaymentRef
	if charge.Status == payment.StatusApproved {
		if err := s.confirm(ctx, b); err != nil {
			return nil, nil, err
		}
	} else if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, nil, err
	}

	metrics.IncBookingCreated(string(bike.Kind))
	logger.ExitMethod("bookingService.CreateBooking", "bookingID", b.ID, "status", b.Status)
	return b, charge, nil
}

// confirm marks the deposit as paid, records it and sends the confirmation.
func (s *bookingService) confirm(ctx context.Context, b *domain.Booking) error {
	b.Status = domain.BookingStatusConfirmed
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return err
	}
	s.record(ctx, b, domain.TransactionTypeDeposit, b.DepositAmount, "Deposit paid")

	if r, err := receipt.Build(b); err == nil && b.UserEmail != "" {
		_ = s.emailSvc.SendBookingConfirmation(ctx, b.UserEmail, r)
	}
	return nil
}

// record writes a ledger entry. The booking change is already committed, so a
// failure here is logged and left for reconciliation.
func (s *bookingService) record(ctx context.Context, b *domain.Booking, typ domain.TransactionType, amount pricing.Money, desc string) {
	tx := &domain.LedgerTransaction{
		BookingID:   b.ID,
		UserID:      b.UserID,
		Amount:      amount,
		Type:        typ,
		PaymentRef:  b.PaymentRef,
		Description: desc,
	}
	if err := s.ledgerRepo.CreateTransaction(ctx, tx); err != nil {
		logger.Error("Failed to record ledger transaction", "bookingID", b.ID, "type", typ, "amount", amount.String(), "error", err)
	}
}

func (s *bookingService) ConfirmDepositPayment(ctx context.Context, caller *security.Identity, bookingID int32, paymentRef string) (*domain.Booking, error) {
	b, err := s.load(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}
	if b.PaymentRef != paymentRef {
		return nil, fmt.Errorf("%w: payment reference does not match", ErrInvalidBookingState)
	}
	switch b.Status {
	case domain.BookingStatusPendingPayment:
	case domain.BookingStatusConfirmed:
		// redirect replayed
		return b, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidBookingState, b.Status)
	}
	if err := s.confirm(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bookingService) GetBooking(ctx context.Context, caller *security.Identity, bookingID int32) (*domain.Booking, error) {
	return s.load(ctx, caller, bookingID)
}

func (s *bookingService) ListMyBookings(ctx context.Context, caller *security.Identity, page, pageSize int32) ([]domain.Booking, int32, error) {
	if caller == nil {
		return nil, 0, ErrForbidden
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.bookingRepo.ListByUser(ctx, caller.UserID, page, pageSize)
}

func (s *bookingService) StartRide(ctx context.Context, caller *security.Identity, bookingID int32) (*domain.Booking, error) {
	b, err := s.load(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingStatusConfirmed {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBookingState, b.Status)
	}
	b.Status = domain.BookingStatusActive
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, caller *security.Identity, bookingID int32) (*domain.Booking, error) {
	b, err := s.load(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}
	refundDeposit := false
	switch b.Status {
	case domain.BookingStatusPendingPayment:
	case domain.BookingStatusConfirmed:
		if !s.now().Before(b.StartTime) {
			return nil, fmt.Errorf("%w: rental has already started", ErrInvalidBookingState)
		}
		refundDeposit = true
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidBookingState, b.Status)
	}

	b.Status = domain.BookingStatusCancelled
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, err
	}
	if refundDeposit {
		s.record(ctx, b, domain.TransactionTypeRefund, -b.DepositAmount, "Deposit refunded on cancellation")
	}
	return b, nil
}

func (s *bookingService) QuoteExtension(ctx context.Context, caller *security.Identity, bookingID int32, newEnd time.Time) (*pricing.Extension, error) {
	b, err := s.load(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.checkExtendable(b); err != nil {
		return nil, err
	}
	ext, err := pricing.PriceExtension(b.Terms(), newEnd)
	if err != nil {
		return nil, err
	}
	return &ext, nil
}

// checkExtendable refuses extensions once the booking has run past its grace
// window. Time already overdue is settled at the late tiers.
func (s *bookingService) checkExtendable(b *domain.Booking) error {
	if !b.IsOpen() || b.Status == domain.BookingStatusOverdue {
		return fmt.Errorf("%w: %s", ErrInvalidBookingState, b.Status)
	}
	if s.now().After(b.EndTime.Add(s.policy.GracePeriod)) {
		return fmt.Errorf("%w: booking ended at %s", ErrInvalidBookingState, b.EndTime.Format(time.RFC3339))
	}
	return nil
}

func (s *bookingService) ExtendBooking(ctx context.Context, caller *security.Identity, bookingID int32, newEnd time.Time) (*domain.Booking, *pricing.Extension, error) {
	b, err := s.load(ctx, caller, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.checkExtendable(b); err != nil {
		return nil, nil, err
	}
	ext, err := pricing.PriceExtension(b.Terms(), newEnd)
	if err != nil {
		return nil, nil, err
	}

	b.EndTime = newEnd.UTC()
	b.TotalPrice = ext.NewTotalPrice
	b.BilledHours = ext.NewBilledHours
	b.RemainingAmount += ext.AdditionalCost
	if err := s.bookingRepo.Extend(ctx, b); err != nil {
		if errors.Is(err, repository.ErrOverlap) {
			metrics.IncBookingConflict()
			return nil, nil, ErrBookingConflict
		}
		return nil, nil, err
	}

	s.record(ctx, b, domain.TransactionTypeExtensionCharge, ext.AdditionalCost,
		fmt.Sprintf("Extension of %d hour(s) at %s/hr", ext.AdditionalHours, ext.HourlyRate))
	metrics.ObserveExtension(ext.AdditionalHours)
	logger.WithBooking(b.ID).Info("Booking extended", "newEnd", b.EndTime, "additionalCost", ext.AdditionalCost.String())
	return b, &ext, nil
}

func (s *bookingService) SettleReturn(ctx context.Context, caller *security.Identity, bookingID int32, req SettleRequest) (*domain.Booking, *pricing.Settlement, error) {
	logger.EnterMethod("bookingService.SettleReturn", "bookingID", bookingID)
	if (req.AdjustmentPercent != nil || req.ActualEndTime != nil) && !caller.IsAdmin() {
		return nil, nil, ErrForbidden
	}
	b, err := s.load(ctx, caller, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if !b.IsOpen() && !(b.Status == domain.BookingStatusManualReview && caller.IsAdmin()) {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidBookingState, b.Status)
	}

	actualEnd := s.now().UTC()
	if req.ActualEndTime != nil {
		actualEnd = req.ActualEndTime.UTC()
	}
	st, err := pricing.Settle(s.policy, b.Terms(), actualEnd, pricing.SettleOptions{
		AdjustmentPercent:   req.AdjustmentPercent,
		ResolveManualReview: b.Status == domain.BookingStatusManualReview,
	})
	if err != nil {
		return nil, nil, err
	}
	log := logger.WithBooking(b.ID)

	if review, ok := st.Outcome.(pricing.ManualReview); ok {
		if b.Status != domain.BookingStatusManualReview {
			b.Status = domain.BookingStatusManualReview
			if err := s.bookingRepo.Update(ctx, b); err != nil {
				return nil, nil, err
			}
			NotifyManualReview(ctx, s.noteRepo, s.emailSvc, b, review.Overage)
		}
		log.Warn("Return needs manual review", "overage", review.Overage)
		return b, &st, nil
	}

	adjusted := st.AdjustedPrice
	b.ActualEndTime = &actualEnd
	b.AdjustedPrice = &adjusted
	b.RefundAmount = st.RefundAmount
	b.AdditionalCharges = st.AdditionalChargeAmount
	b.SettlementOutcome = string(st.Outcome.Kind())
	b.RemainingAmount = adjusted - b.OwnerShare
	b.Status = domain.BookingStatusCompleted
	if _, early := st.Outcome.(pricing.EarlyReturn); early {
		b.AdjustmentPercent = req.AdjustmentPercent
	}
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, nil, err
	}

	switch o := st.Outcome.(type) {
	case pricing.EarlyReturn:
		if st.RefundAmount > 0 {
			s.record(ctx, b, domain.TransactionTypeRefund, -st.RefundAmount,
				fmt.Sprintf("Early return refund, billed %d hour(s)", o.ActualHours))
		}
		if st.AdditionalChargeAmount > 0 {
			s.record(ctx, b, domain.TransactionTypeAdjustment, st.AdditionalChargeAmount, "Admin surcharge on early return")
		}
	case pricing.LateReturn:
		s.record(ctx, b, domain.TransactionTypeLateCharge, o.Charge,
			fmt.Sprintf("Late return, %s tier, %d hour(s) at %d%%", o.Tier.Name, o.OverageHours, o.Tier.MultiplierPercent))
	case pricing.OnTime:
	}

	metrics.ObserveSettlement(b.SettlementOutcome, st.RefundAmount.Paise(), st.AdditionalChargeAmount.Paise())
	if r, err := receipt.Build(b); err == nil && b.UserEmail != "" {
		_ = s.emailSvc.SendSettlementReceipt(ctx, b.UserEmail, r)
	}
	log.Info("Booking settled", "outcome", b.SettlementOutcome, "adjusted", adjusted.String(),
		"refund", st.RefundAmount.String(), "charge", st.AdditionalChargeAmount.String())
	logger.ExitMethod("bookingService.SettleReturn", "bookingID", b.ID)
	return b, &st, nil
}

func (s *bookingService) GetReceipt(ctx context.Context, caller *security.Identity, bookingID int32) (*receipt.Receipt, error) {
	b, err := s.load(ctx, caller, bookingID)
	if err != nil {
		return nil, err
	}
	return receipt.Build(b)
}
