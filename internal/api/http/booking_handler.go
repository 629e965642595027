package http

import (
	"net/http"
	"time"

	"bikerental-backend/internal/domain"
	"bikerental-backend/internal/payment"
	"bikerental-backend/internal/pricing"
	"bikerental-backend/internal/service"
)

type createBookingResponse struct {
	Booking *domain.Booking       `json:"booking"`
	Payment *payment.ChargeResult `json:"payment"`
}

type extendRequest struct {
	NewEndTime time.Time `json:"new_end_time"`
	QuoteOnly  bool      `json:"quote_only"`
}

type extendResponse struct {
	Booking   *domain.Booking    `json:"booking,omitempty"`
	Extension *pricing.Extension `json:"extension"`
}

// settlementView flattens the closed outcome type for clients.
type settlementView struct {
	Outcome                pricing.OutcomeKind `json:"outcome"`
	AdjustedPrice          pricing.Money       `json:"adjusted_price"`
	RefundAmount           pricing.Money       `json:"refund_amount"`
	AdditionalChargeAmount pricing.Money       `json:"additional_charge_amount"`
	ActualHours            int64               `json:"actual_hours,omitempty"`
	LateTier               string              `json:"late_tier,omitempty"`
	OverageMinutes         int64               `json:"overage_minutes,omitempty"`
	OverageHours           int64               `json:"overage_hours,omitempty"`
}

type settleResponse struct {
	Booking    *domain.Booking `json:"booking"`
	Settlement settlementView  `json:"settlement"`
}

func newSettlementView(s *pricing.Settlement) settlementView {
	v := settlementView{
		Outcome:                s.Outcome.Kind(),
		AdjustedPrice:          s.AdjustedPrice,
		RefundAmount:           s.RefundAmount,
		AdditionalChargeAmount: s.AdditionalChargeAmount,
	}
	switch o := s.Outcome.(type) {
	case pricing.EarlyReturn:
		v.ActualHours = o.ActualHours
	case pricing.LateReturn:
		v.LateTier = o.Tier.Name
		v.OverageMinutes = int64(o.Overage / time.Minute)
		v.OverageHours = o.OverageHours
	case pricing.ManualReview:
		v.OverageMinutes = int64(o.Overage / time.Minute)
	case pricing.OnTime:
	}
	return v
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req service.QuoteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	q, err := h.bookings.Quote(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBookingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, charge, err := h.bookings.CreateBooking(r.Context(), caller(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createBookingResponse{Booking: b, Payment: charge})
}

func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookings.ConfirmDepositPayment(r.Context(), caller(r), id, r.URL.Query().Get("payment_ref"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookings.GetBooking(r.Context(), caller(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	list, total, err := h.bookings.ListMyBookings(r.Context(), caller(r), page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": list, "total": total})
}

func (h *Handler) StartRide(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookings.StartRide(r.Context(), caller(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookings.CancelBooking(r.Context(), caller(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) ExtendBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req extendRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if req.QuoteOnly {
		ext, err := h.bookings.QuoteExtension(r.Context(), caller(r), id, req.NewEndTime)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, extendResponse{Extension: ext})
		return
	}

	b, ext, err := h.bookings.ExtendBooking(r.Context(), caller(r), id, req.NewEndTime)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, extendResponse{Booking: b, Extension: ext})
}

// ReturnBike settles at the current time on behalf of the renter.
func (h *Handler) ReturnBike(w http.ResponseWriter, r *http.Request) {
	h.settle(w, r, service.SettleRequest{})
}

func (h *Handler) SettleBooking(w http.ResponseWriter, r *http.Request) {
	var req service.SettleRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	h.settle(w, r, req)
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request, req service.SettleRequest) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, st, err := h.bookings.SettleReturn(r.Context(), caller(r), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if st.Outcome.Kind() == pricing.OutcomeManualReview {
		status = http.StatusAccepted
	}
	writeJSON(w, status, settleResponse{Booking: b, Settlement: newSettlementView(st)})
}

func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rc, err := h.bookings.GetReceipt(r.Context(), caller(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rc.Text()))
}
