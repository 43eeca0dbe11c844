package webapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/pixflow/internal/fixtures"
	"github.com/amirasaad/pixflow/pkg/config"
	"github.com/amirasaad/pixflow/pkg/domain"
	"github.com/amirasaad/pixflow/pkg/idempotency"
	"github.com/amirasaad/pixflow/pkg/money"
	"github.com/amirasaad/pixflow/pkg/repository"
	"github.com/amirasaad/pixflow/pkg/service"
	"github.com/amirasaad/pixflow/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyNotifier struct {
	mu    sync.Mutex
	calls int
}

func (s *spyNotifier) SendWithdrawReceipt(_ context.Context, _ domain.PixKey, _ money.Money, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return nil
}

func (s *spyNotifier) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeReads struct {
	page repository.WithdrawPage
}

func (f *fakeReads) ListByAccount(_ context.Context, _ string, _, _ int) (repository.WithdrawPage, error) {
	return f.page, nil
}

type testEnv struct {
	app      *fiber.App
	store    *fixtures.MemoryStore
	idem     idempotency.Service
	notifier *spyNotifier
	clock    fixtures.FixedClock
}

func newTestEnv(t *testing.T, reads repository.WithdrawReadRepository) *testEnv {
	t.Helper()

	clock := fixtures.FixedClock{Time: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := fixtures.NewMemoryStore(clock)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewWithdrawalService(store, &fixtures.SequentialIDs{}, clock, logger)
	idem := idempotency.NewMemoryService(time.Hour)
	notifier := &spyNotifier{}

	if reads == nil {
		reads = &fakeReads{}
	}

	app := webapi.NewApp(webapi.Deps{
		Service:     svc,
		Reads:       reads,
		Idempotency: idem,
		Notifier:    notifier,
		Clock:       clock,
		Logger:      logger,
		RateLimit:   config.RateLimit{MaxRequests: 1000, Window: time.Minute},
	})

	return &testEnv{app: app, store: store, idem: idem, notifier: notifier, clock: clock}
}

func postWithdraw(t *testing.T, env *testEnv, accountID, body, idemKey string) (int, map[string]any, map[string]string) {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, "/accounts/"+accountID+"/withdraw", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))

	headers := map[string]string{
		"Idempotency-Key":      resp.Header.Get("Idempotency-Key"),
		"Idempotency-Replayed": resp.Header.Get("Idempotency-Replayed"),
	}
	return resp.StatusCode, payload, headers
}

func TestCreateWithdraw_ImmediateSuccess(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.SeedAccount(domain.NewAccount("acc-1", "Maria", money.MustFromCents(10000)))

	status, payload, headers := postWithdraw(t, env, "acc-1",
		`{"amount": 25.50, "pix": {"type": "email", "key": "maria@example.com"}}`, "key-1")

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, payload["ok"])
	assert.NotEmpty(t, payload["withdraw_id"])
	assert.Equal(t, "key-1", headers["Idempotency-Key"])
	assert.Equal(t, "false", headers["Idempotency-Replayed"])

	assert.Equal(t, int64(7450), env.store.AccountByID("acc-1").Balance.Cents())
	assert.Equal(t, 1, env.notifier.Calls())
}

func TestCreateWithdraw_ReplayIsVerbatimAndSideEffectFree(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.SeedAccount(domain.NewAccount("acc-1", "Maria", money.MustFromCents(10000)))
	body := `{"amount": 25.50, "pix": {"type": "email", "key": "maria@example.com"}}`

	status1, payload1, _ := postWithdraw(t, env, "acc-1", body, "key-1")
	status2, payload2, headers2 := postWithdraw(t, env, "acc-1", body, "key-1")

	assert.Equal(t, status1, status2)
	assert.Equal(t, payload1, payload2)
	assert.Equal(t, "true", headers2["Idempotency-Replayed"])

	// one debit, one receipt
	assert.Equal(t, int64(7450), env.store.AccountByID("acc-1").Balance.Cents())
	assert.Equal(t, 1, env.notifier.Calls())
}

func TestCreateWithdraw_InsufficientFunds(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.SeedAccount(domain.NewAccount("acc-1", "Maria", money.MustFromCents(1000)))

	status, payload, _ := postWithdraw(t, env, "acc-1",
		`{"amount": 25.50, "pix": {"type": "email", "key": "maria@example.com"}}`, "key-1")

	// the request succeeds; the outcome lives on the withdraw row
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, payload["ok"])

	wid := payload["withdraw_id"].(string)
	ctx := context.Background()
	w, err := env.store.Withdraws().ByID(ctx, wid)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.True(t, w.Done)
	assert.True(t, w.Error)
	assert.Equal(t, domain.ReasonInsufficientFunds, w.ErrorReason)

	assert.Equal(t, int64(1000), env.store.AccountByID("acc-1").Balance.Cents())
	assert.Equal(t, 0, env.notifier.Calls())
}

func TestCreateWithdraw_Scheduled(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.SeedAccount(domain.NewAccount("acc-1", "Maria", money.MustFromCents(10000)))

	status, payload, _ := postWithdraw(t, env, "acc-1",
		`{"amount": 25.50, "pix": {"type": "email", "key": "maria@example.com"}, "schedule": "2024-06-02 10:00"}`,
		"key-1")

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, payload["ok"])

	// no debit and no receipt until the processor runs it
	assert.Equal(t, int64(10000), env.store.AccountByID("acc-1").Balance.Cents())
	assert.Equal(t, 0, env.notifier.Calls())
}

func TestCreateWithdraw_ScheduleValidation(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantCode string
	}{
		{"past", "2024-05-30 10:00", "SCHEDULE_PAST"},
		{"too far", "2024-06-20 10:00", "SCHEDULE_TOO_FAR"},
		{"malformed", "02/06/2024 10h", "INVALID_ARGUMENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.store.SeedAccount(domain.NewAccount("acc-1", "Maria", money.MustFromCents(10000)))

			status, payload, _ := postWithdraw(t, env, "acc-1",
				`{"amount": 25.50, "pix": {"type": "email", "key": "maria@example.com"}, "schedule": "`+tt.schedule+`"}`,
				"key-1")

			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, false, payload["ok"])
			assert.Equal(t, tt.wantCode, payload["error_code"])
			assert.Equal(t, int64(10000), env.store.AccountByID("acc-1").Balance.Cents())
		})
	}
}

func TestCreateWithdraw_RejectionIsCached(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.SeedAccount(domain.NewAccount("acc-1", "Maria", money.MustFromCents(10000)))
	body := `{"amount": 25.50, "pix": {"type": "email", "key": "maria@example.com"}, "schedule": "2024-05-30 10:00"}`

	status1, payload1, _ := postWithdraw(t, env, "acc-1", body, "key-1")
	status2, payload2, headers2 := postWithdraw(t, env, "acc-1", body, "key-1")

	assert.Equal(t, fiber.StatusBadRequest, status1)
	assert.Equal(t, status1, status2)
	assert.Equal(t, payload1, payload2)
	assert.Equal(t, "true", headers2["Idempotency-Replayed"])
}

func TestCreateWithdraw_BodyValidationRejectionHasIdempotencyEnvelope(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.SeedAccount(domain.NewAccount("acc-1", "Maria", money.MustFromCents(10000)))
	body := `{"amount": 0, "pix": {"type": "email", "key": "maria@example.com"}}`

	status, payload, headers := postWithdraw(t, env, "acc-1", body, "key-1")

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, payload["ok"])
	assert.Equal(t, "INVALID_ARGUMENT", payload["error_code"])
	assert.Equal(t, "key-1", headers["Idempotency-Key"])
	assert.Equal(t, "false", headers["Idempotency-Replayed"])

	// the rejection is cached like any other business outcome
	status2, payload2, headers2 := postWithdraw(t, env, "acc-1", body, "key-1")
	assert.Equal(t, status, status2)
	assert.Equal(t, payload, payload2)
	assert.Equal(t, "true", headers2["Idempotency-Replayed"])
}

func TestCreateWithdraw_ServerErrorHasEnvelopeAndStaysRetryable(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.SeedAccount(domain.NewAccount("acc-1", "Maria", money.MustFromCents(10000)))
	body := `{"amount": 25.50, "pix": {"type": "email", "key": "maria@example.com"}}`

	env.store.FailCreate = errors.New("storage down")
	status, _, headers := postWithdraw(t, env, "acc-1", body, "key-1")

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "key-1", headers["Idempotency-Key"])
	assert.Equal(t, "false", headers["Idempotency-Replayed"])

	// nothing cached, lock released: the retry executes for real
	env.store.FailCreate = nil
	status, payload, headers := postWithdraw(t, env, "acc-1", body, "key-1")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, payload["ok"])
	assert.Equal(t, "false", headers["Idempotency-Replayed"])
	assert.Equal(t, int64(7450), env.store.AccountByID("acc-1").Balance.Cents())
}

func TestCreateWithdraw_InvalidPixKey(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.SeedAccount(domain.NewAccount("acc-1", "Maria", money.MustFromCents(10000)))

	status, payload, _ := postWithdraw(t, env, "acc-1",
		`{"amount": 25.50, "pix": {"type": "email", "key": "not-an-email"}}`, "key-1")

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, payload["ok"])
	assert.Equal(t, "INVALID_ARGUMENT", payload["error_code"])
}

func TestCreateWithdraw_InFlightDuplicate(t *testing.T) {
	env := newTestEnv(t, nil)
	env.store.SeedAccount(domain.NewAccount("acc-1", "Maria", money.MustFromCents(10000)))

	// simulate a first submission still holding the lock
	ok, err := env.idem.Acquire(context.Background(), "key-1", "some-other-fingerprint")
	require.NoError(t, err)
	require.True(t, ok)

	status, _, headers := postWithdraw(t, env, "acc-1",
		`{"amount": 25.50, "pix": {"type": "email", "key": "maria@example.com"}}`, "key-1")

	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "key-1", headers["Idempotency-Key"])
	assert.Equal(t, "false", headers["Idempotency-Replayed"])
	assert.Equal(t, int64(10000), env.store.AccountByID("acc-1").Balance.Cents())
}

func TestListWithdraws(t *testing.T) {
	reason := domain.ReasonInsufficientFunds
	pixType := "email"
	masked := "mar***@example.com"
	reads := &fakeReads{page: repository.WithdrawPage{
		Total: 2,
		Items: []repository.WithdrawListItem{
			{ID: "wid-2", AccountID: "acc-1", Method: domain.MethodPix, Amount: 25.50, AmountCents: 2550, Done: true, PixType: &pixType, PixKeyMasked: &masked},
			{ID: "wid-1", AccountID: "acc-1", Method: domain.MethodPix, Amount: 10.00, AmountCents: 1000, Done: true, Error: true, ErrorReason: &reason, PixType: &pixType, PixKeyMasked: &masked},
		},
	}}
	env := newTestEnv(t, reads)

	req := httptest.NewRequest(fiber.MethodGet, "/accounts/acc-1/withdraws?page=1&per_page=20", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		OK      bool                          `json:"ok"`
		Page    int                           `json:"page"`
		PerPage int                           `json:"per_page"`
		Total   int64                         `json:"total"`
		Items   []repository.WithdrawListItem `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))

	assert.True(t, payload.OK)
	assert.Equal(t, 1, payload.Page)
	assert.Equal(t, 20, payload.PerPage)
	assert.Equal(t, int64(2), payload.Total)
	require.Len(t, payload.Items, 2)
	assert.Equal(t, "wid-2", payload.Items[0].ID)
	assert.Equal(t, "mar***@example.com", *payload.Items[0].PixKeyMasked)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
