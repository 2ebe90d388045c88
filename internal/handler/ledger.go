package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/segyhp/banquito/internal/domain"
	customError "github.com/segyhp/banquito/pkg/errors"
	"github.com/segyhp/banquito/pkg/response"
)

// LedgerService is what the HTTP surface needs from the service layer
type LedgerService interface {
	CreateClient(ctx context.Context, request *domain.CreateClientRequest) (*domain.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	ListClients(ctx context.Context) ([]*domain.Client, error)
	CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.LoanView, error)
	UpdateLoanTerms(ctx context.Context, id uuid.UUID, request *domain.CreateLoanRequest) (*domain.LoanView, error)
	GetLoan(ctx context.Context, id uuid.UUID) (*domain.LoanView, error)
	GetSchedule(ctx context.Context, id uuid.UUID) (*domain.ScheduleResponse, error)
	ListLoans(ctx context.Context, filter domain.LoanFilter) ([]*domain.LoanView, error)
	RecordPayment(ctx context.Context, id uuid.UUID, request *domain.RecordPaymentRequest) (*domain.Payment, error)
	ListPayments(ctx context.Context, id uuid.UUID) ([]*domain.Payment, error)
	SetPaid(ctx context.Context, id uuid.UUID, paid bool) (*domain.LoanView, error)
	GetPortfolio(ctx context.Context) (*domain.PortfolioResponse, error)
	ListCurrencies(ctx context.Context) (*domain.CurrencySnapshot, error)
	SelectDisplayCurrency(ctx context.Context, code string) (*domain.CurrencySnapshot, error)
	UpdateRate(ctx context.Context, code string, rate decimal.Decimal) (*domain.Currency, error)
}

type LedgerHandler struct {
	service   LedgerService
	validator *validator.Validate
	log       *zap.Logger
}

func NewLedgerHandler(service LedgerService, log *zap.Logger) *LedgerHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &LedgerHandler{
		service:   service,
		validator: newValidator(),
		log:       log,
	}
}

// RegisterRoutes mounts the ledger API on api
func (h *LedgerHandler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/clients", h.CreateClient).Methods(http.MethodPost)
	api.HandleFunc("/clients", h.ListClients).Methods(http.MethodGet)
	api.HandleFunc("/clients/{clientId}", h.GetClient).Methods(http.MethodGet)

	api.HandleFunc("/loans", h.CreateLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans", h.ListLoans).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}", h.GetLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}", h.UpdateLoanTerms).Methods(http.MethodPut)
	api.HandleFunc("/loans/{loanId}/paid", h.SetPaid).Methods(http.MethodPut)
	api.HandleFunc("/loans/{loanId}/schedule", h.GetSchedule).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}/payments", h.RecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loanId}/payments", h.ListPayments).Methods(http.MethodGet)

	api.HandleFunc("/portfolio", h.GetPortfolio).Methods(http.MethodGet)

	api.HandleFunc("/currencies", h.ListCurrencies).Methods(http.MethodGet)
	api.HandleFunc("/currencies/selected", h.SelectDisplayCurrency).Methods(http.MethodPut)
	api.HandleFunc("/currencies/{code}/rate", h.UpdateRate).Methods(http.MethodPut)
}

func (h *LedgerHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateClientRequest
	if !h.decode(w, r, &request) {
		return
	}

	client, err := h.service.CreateClient(r.Context(), &request)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, client)
}

func (h *LedgerHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, clients)
}

func (h *LedgerHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "clientId")
	if !ok {
		return
	}

	client, err := h.service.GetClient(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, client)
}

func (h *LedgerHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if !h.decode(w, r, &request) {
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), &request)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, loan)
}

func (h *LedgerHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.LoanFilter{
		Status: domain.LoanStatus(strings.ToUpper(query.Get("status"))),
		Query:  query.Get("q"),
		SortBy: query.Get("sort"),
	}

	loans, err := h.service.ListLoans(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, loans)
}

func (h *LedgerHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}

	loan, err := h.service.GetLoan(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LedgerHandler) UpdateLoanTerms(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}

	var request domain.CreateLoanRequest
	if !h.decode(w, r, &request) {
		return
	}

	loan, err := h.service.UpdateLoanTerms(r.Context(), id, &request)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LedgerHandler) SetPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}

	var request domain.SetPaidRequest
	if !h.decode(w, r, &request) {
		return
	}

	loan, err := h.service.SetPaid(r.Context(), id, request.Paid)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LedgerHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}

	schedule, err := h.service.GetSchedule(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, schedule)
}

func (h *LedgerHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}

	var request domain.RecordPaymentRequest
	if !h.decode(w, r, &request) {
		return
	}

	payment, err := h.service.RecordPayment(r.Context(), id, &request)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, payment)
}

func (h *LedgerHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}

	payments, err := h.service.ListPayments(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, payments)
}

func (h *LedgerHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.service.GetPortfolio(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, portfolio)
}

func (h *LedgerHandler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.service.ListCurrencies(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, currencies)
}

func (h *LedgerHandler) SelectDisplayCurrency(w http.ResponseWriter, r *http.Request) {
	var request domain.SelectCurrencyRequest
	if !h.decode(w, r, &request) {
		return
	}

	currencies, err := h.service.SelectDisplayCurrency(r.Context(), request.Code)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, currencies)
}

func (h *LedgerHandler) UpdateRate(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var request domain.UpdateRateRequest
	if !h.decode(w, r, &request) {
		return
	}

	currency, err := h.service.UpdateRate(r.Context(), code, request.Rate)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, currency)
}

// decode reads a JSON body into dst and validates it. On failure it writes a
// 400 and reports false.
func (h *LedgerHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return false
	}

	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *LedgerHandler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()

	var be *customError.BusinessError
	if errors.As(err, &be) {
		message = be.Message
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}

	response.CodedError(w, status, customError.Code(err), message, err)
}

func statusFor(err error) int {
	switch customError.Code(err) {
	case customError.ErrCodeLoanNotFound,
		customError.ErrCodeClientNotFound,
		customError.ErrCodeCurrencyNotFound:
		return http.StatusNotFound
	case customError.ErrCodeLoanAlreadyPaid,
		customError.ErrCodeLoanHasPayments,
		customError.ErrCodeBaseCurrencyRate:
		return http.StatusConflict
	case customError.ErrCodeInvalidLoanAmount,
		customError.ErrCodeInvalidPaymentAmount,
		customError.ErrCodeInvalidDate,
		customError.ErrCodeInvalidPeriod,
		customError.ErrCodeInvalidRate,
		customError.ErrCodeInvalidRateBase,
		customError.ErrCodeInvalidInstallments:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
