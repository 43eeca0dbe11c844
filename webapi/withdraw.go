package webapi

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/pixflow/pkg/domain"
	"github.com/amirasaad/pixflow/pkg/idempotency"
	"github.com/amirasaad/pixflow/pkg/money"
	"github.com/amirasaad/pixflow/pkg/notification"
	"github.com/amirasaad/pixflow/pkg/repository"
	"github.com/amirasaad/pixflow/pkg/service"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// scheduleLayout is the accepted wall-clock format for future-dated
// withdrawals, interpreted in the service timezone.
const scheduleLayout = "2006-01-02 15:04"

// WithdrawRequest is the body of POST /accounts/:accountId/withdraw.
type WithdrawRequest struct {
	Method   string          `json:"method" validate:"omitempty"`
	Amount   float64         `json:"amount" validate:"required,gt=0"`
	Pix      WithdrawPixBody `json:"pix" validate:"required"`
	Schedule *string         `json:"schedule" validate:"omitempty"`
}

// WithdrawPixBody is the PIX destination inside a withdrawal request.
type WithdrawPixBody struct {
	Type string `json:"type" validate:"omitempty"`
	Key  string `json:"key" validate:"required"`
}

// withdrawResult is the cached success envelope.
type withdrawResult struct {
	OK         bool   `json:"ok"`
	WithdrawID string `json:"withdraw_id"`
}

// withdrawRejection is the cached business-error envelope.
type withdrawRejection struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

// WithdrawRoutes registers the withdrawal endpoints.
//
//   - POST /accounts/:accountId/withdraw  : request an immediate or scheduled withdrawal.
//   - GET  /accounts/:accountId/withdraws : list the account's withdrawals, newest first.
func WithdrawRoutes(
	app *fiber.App,
	svc *service.WithdrawalService,
	reads repository.WithdrawReadRepository,
	idem idempotency.Service,
	notifier notification.Sender,
	clock domain.Clock,
	logger *slog.Logger,
) {
	h := &withdrawHandler{
		svc:      svc,
		reads:    reads,
		idem:     idem,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
	app.Post("/accounts/:accountId/withdraw", h.create)
	app.Get("/accounts/:accountId/withdraws", h.list)
}

type withdrawHandler struct {
	svc      *service.WithdrawalService
	reads    repository.WithdrawReadRepository
	idem     idempotency.Service
	notifier notification.Sender
	clock    domain.Clock
	logger   *slog.Logger
}

func (h *withdrawHandler) create(c *fiber.Ctx) error {
	accountID := c.Params("accountId")

	key := c.Get("Idempotency-Key")
	if key == "" {
		key = uuid.NewString()
	}

	// every response on this route carries the key and a replay indicator,
	// whatever the outcome
	c.Set("Idempotency-Key", key)
	c.Set("Idempotency-Replayed", "false")

	rec, err := h.idem.GetRecord(c.Context(), key)
	if err != nil {
		return ErrorResponseJSON(c, fiber.StatusInternalServerError, "Idempotency store unavailable", err.Error())
	}
	if rec != nil {
		c.Set("Idempotency-Replayed", "true")
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(rec.Status).Send(rec.Body)
	}

	// the fingerprint covers the logical payload, not its byte encoding
	var rawBody any
	if err := json.Unmarshal(c.Body(), &rawBody); err != nil {
		rawBody = string(c.Body())
	}
	fp, err := idempotency.Fingerprint(map[string]any{
		"route":     "withdraw",
		"accountId": accountID,
		"body":      rawBody,
	})
	if err != nil {
		return ErrorResponseJSON(c, fiber.StatusInternalServerError, "Internal Server Error", err.Error())
	}

	acquired, err := h.idem.Acquire(c.Context(), key, fp)
	if err != nil {
		return ErrorResponseJSON(c, fiber.StatusInternalServerError, "Idempotency store unavailable", err.Error())
	}
	if !acquired {
		inflight, err := h.idem.InflightFingerprint(c.Context(), key)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusInternalServerError, "Idempotency store unavailable", err.Error())
		}
		if inflight != "" && inflight != fp {
			return ErrorResponseJSON(c, fiber.StatusConflict, "Idempotency key reuse",
				"the same Idempotency-Key was used with a different payload")
		}
		return ErrorResponseJSON(c, fiber.StatusConflict, "Request in flight",
			"a request with this Idempotency-Key is still being processed")
	}

	// malformed bodies are rejected through the cached envelope too, so a
	// retried request replays the same rejection
	var req WithdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return h.reject(c, key, fp, fiber.StatusBadRequest, withdrawRejection{
			OK:        false,
			Error:     "invalid request body: " + err.Error(),
			ErrorCode: "INVALID_ARGUMENT",
		})
	}
	if err := validator.New().Struct(req); err != nil {
		return h.reject(c, key, fp, fiber.StatusBadRequest, withdrawRejection{
			OK:        false,
			Error:     err.Error(),
			ErrorCode: "INVALID_ARGUMENT",
		})
	}

	amount, pix, schedule, buildErr := h.buildWithdrawal(&req)
	if buildErr != nil {
		code, status := ErrorToCode(buildErr)
		return h.reject(c, key, fp, status, withdrawRejection{
			OK:        false,
			Error:     buildErr.Error(),
			ErrorCode: code,
		})
	}

	wid, err := h.svc.Request(c.Context(), accountID, amount, pix, schedule)
	if err != nil {
		// unexpected failures stay uncached and unlocked so the client can retry
		h.logger.Error("withdraw request failed", "account_id", accountID, "error", err)
		if relErr := h.idem.Release(c.Context(), key); relErr != nil {
			h.logger.Error("idempotency lock release failed", "key", key, "error", relErr)
		}
		return ErrorResponseJSON(c, fiber.StatusInternalServerError, "Internal Server Error", err.Error())
	}

	h.notifyIfDebited(c, wid)

	payload := withdrawResult{OK: true, WithdrawID: wid}
	return h.respondAndCache(c, key, fp, fiber.StatusOK, payload)
}

// buildWithdrawal turns the request body into domain values, applying the
// same defaults the API has always had: method PIX, pix type email.
func (h *withdrawHandler) buildWithdrawal(req *WithdrawRequest) (money.Money, domain.PixKey, domain.Schedule, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = domain.MethodPix
	}
	if method != domain.MethodPix {
		return money.Money{}, domain.PixKey{}, domain.Schedule{}, domain.ErrUnsupportedMethod
	}

	amount, err := money.FromDecimal(req.Amount)
	if err != nil {
		return money.Money{}, domain.PixKey{}, domain.Schedule{}, err
	}

	pixType := req.Pix.Type
	if pixType == "" {
		pixType = string(domain.PixKeyEmail)
	}
	pix, err := domain.NewPixKey(pixType, req.Pix.Key)
	if err != nil {
		return money.Money{}, domain.PixKey{}, domain.Schedule{}, err
	}

	schedule := domain.Immediate()
	if req.Schedule != nil && *req.Schedule != "" {
		at, err := time.ParseInLocation(scheduleLayout, *req.Schedule, h.clock.Timezone())
		if err != nil {
			return money.Money{}, domain.PixKey{}, domain.Schedule{}, domain.ErrInvalidScheduleFormat
		}
		schedule, err = domain.NewSchedule(&at, h.clock)
		if err != nil {
			return money.Money{}, domain.PixKey{}, domain.Schedule{}, err
		}
	}

	return amount, pix, schedule, nil
}

// notifyIfDebited sends the receipt when the immediate path completed
// successfully. Scheduled and failed withdrawals never notify, and a
// notification failure never fails the request.
func (h *withdrawHandler) notifyIfDebited(c *fiber.Ctx, wid string) {
	w, err := h.svc.WithdrawByID(c.Context(), wid)
	if err != nil || w == nil {
		if err != nil {
			h.logger.Error("withdraw re-read failed", "withdraw_id", wid, "error", err)
		}
		return
	}
	if !w.Done || w.Error || w.Scheduled {
		return
	}
	if err := h.notifier.SendWithdrawReceipt(c.Context(), w.Pix, w.Amount, h.clock.Now()); err != nil {
		h.logger.Error("withdraw receipt delivery failed", "withdraw_id", wid, "error", err)
	}
}

func (h *withdrawHandler) reject(c *fiber.Ctx, key, fp string, status int, payload withdrawRejection) error {
	return h.respondAndCache(c, key, fp, status, payload)
}

// respondAndCache stores the response under the idempotency key and writes
// it. Business rejections go through here too; retried requests replay them.
func (h *withdrawHandler) respondAndCache(c *fiber.Ctx, key, fp string, status int, payload any) error {
	headers := map[string]string{
		"Idempotency-Key":      key,
		"Idempotency-Replayed": "false",
	}
	if err := h.idem.Store(c.Context(), key, fp, status, headers, payload); err != nil {
		h.logger.Error("idempotency store failed", "key", key, "error", err)
	}

	c.Set("Idempotency-Key", key)
	c.Set("Idempotency-Replayed", "false")
	return c.Status(status).JSON(payload)
}

// listResponse is the paginated listing envelope.
type listResponse struct {
	OK      bool                          `json:"ok"`
	Page    int                           `json:"page"`
	PerPage int                           `json:"per_page"`
	Total   int64                         `json:"total"`
	Items   []repository.WithdrawListItem `json:"items"`
}

func (h *withdrawHandler) list(c *fiber.Ctx) error {
	accountID := c.Params("accountId")

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 20)
	if perPage < 1 {
		perPage = 1
	}
	if perPage > 100 {
		perPage = 100
	}

	res, err := h.reads.ListByAccount(c.Context(), accountID, page, perPage)
	if err != nil {
		return ErrorResponseJSON(c, fiber.StatusInternalServerError, "Internal Server Error", err.Error())
	}

	return c.JSON(listResponse{
		OK:      true,
		Page:    page,
		PerPage: perPage,
		Total:   res.Total,
		Items:   res.Items,
	})
}
