package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/upthermo/orcalc/internal/calculator"
	"github.com/upthermo/orcalc/internal/leads"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu    sync.Mutex
	leads []leads.Lead
	err   error
}

func (c *captureSink) Save(_ context.Context, l leads.Lead) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.leads = append(c.leads, l)
	return nil
}

func init() {
	// The orcalc command sets this for every surface.
	decimal.MarshalJSONWithoutQuotes = true
}

func newTestService(t *testing.T, cfg Config, sink leads.Sink) (*Service, http.Handler) {
	t.Helper()
	if cfg.Defaults.MonthlyBill.IsZero() {
		cfg.Defaults = calculator.Input{MonthlyBill: decimal.NewFromInt(95000), WasteTons: 10, ShiftCount: 3}
	}
	s := New(cfg, nil, nil, sink, nil)
	t.Cleanup(s.Close)
	return s, s.Handler()
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	_, h := newTestService(t, Config{}, nil)
	rec := do(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestEstimateQuery(t *testing.T) {
	s, h := newTestService(t, Config{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/estimate?bill=95000&waste=10&shifts=3&solar=false", nil)
	rec := do(h, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "miss", rec.Header().Get("X-Cache"))

	var body struct {
		Estimate struct {
			YearlySavings       float64 `json:"yearly_savings"`
			TotalMonthlyBenefit float64 `json:"total_monthly_benefit"`
			SavingsRate         float64 `json:"savings_rate"`
		} `json:"estimate"`
		Tier    string  `json:"tier"`
		Display Display `json:"display"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 798000, body.Estimate.YearlySavings, 1e-9)
	assert.InDelta(t, 81500, body.Estimate.TotalMonthlyBenefit, 1e-9)
	assert.InDelta(t, 0.70, body.Estimate.SavingsRate, 1e-9)
	assert.Equal(t, "half-million", body.Tier)
	assert.Equal(t, "To ponad pół miliona złotych rocznie", body.Display.Context)
	assert.Equal(t, "Nie", body.Display.Summary.Solar)

	// Grouped input canonicalizes to the same cache entry.
	rec = do(h, httptest.NewRequest(http.MethodGet, "/v1/estimate?bill=95+000&waste=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hit", rec.Header().Get("X-Cache"))

	st := s.snapshotStatus()
	assert.EqualValues(t, 2, st.Estimates)
	assert.EqualValues(t, 1, st.CacheHits)
	assert.Equal(t, "memory", st.Cache)
}

func TestEstimateQueryInvalidInput(t *testing.T) {
	_, h := newTestService(t, Config{}, nil)

	for _, q := range []string{"bill=abc&waste=1", "bill=1000&waste=x", "bill=-5&waste=1", "waste=3"} {
		rec := do(h, httptest.NewRequest(http.MethodGet, "/v1/estimate?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)

		var body errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), q)
		assert.Equal(t, "invalid_input", body.Kind, q)
	}
}

func TestEstimateJSON(t *testing.T) {
	_, h := newTestService(t, Config{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/estimate",
		strings.NewReader(`{"monthly_bill": 200000, "waste_tons": 5, "has_solar": true}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(h, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body EstimateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Estimate.ShiftCount, "shift count defaults to 3")
	assert.True(t, body.Estimate.YearlySavings.Equal(decimal.NewFromInt(1_800_000)))
	assert.Equal(t, "To ponad 1,8 mln zł rocznie", body.Display.Context)
	assert.Len(t, body.Display.Bonuses, 2)
	assert.Len(t, body.Display.Inaction, 4)
}

func TestEstimateJSONInvalid(t *testing.T) {
	_, h := newTestService(t, Config{}, nil)

	for _, payload := range []string{`{`, `{"waste_tons": 1}`, `{"monthly_bill": -1, "waste_tons": 1}`, `{"monthly_bill": "x", "waste_tons": 1}`} {
		rec := do(h, httptest.NewRequest(http.MethodPost, "/v1/estimate", strings.NewReader(payload)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
		assert.Contains(t, rec.Body.String(), `"kind":"invalid_input"`, payload)
	}
}

func TestProductionAndTimeline(t *testing.T) {
	_, h := newTestService(t, Config{}, nil)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/v1/production", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Turbina ORC (kWh)"`)

	rec = do(h, httptest.NewRequest(http.MethodGet, "/v1/timeline", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Audyt energetyczny")
}

func TestLandingPage(t *testing.T) {
	_, h := newTestService(t, Config{}, nil)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `id="cookie-banner"`)
	assert.Contains(t, rec.Body.String(), `value="95000"`)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ConsentCookie, Value: "true"})
	rec = do(h, req)
	assert.NotContains(t, rec.Body.String(), `id="cookie-banner"`)
}

func TestLandingPageCoercesMalformedInput(t *testing.T) {
	_, h := newTestService(t, Config{}, nil)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/?bill=abc&waste=&shifts=9", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="bill" min="0" step="1000" value="0"`)
	assert.Contains(t, body, "15\u00a0000 zł", "heat bonus still counts with a zero bill")
}

func TestLandingOfferPrefill(t *testing.T) {
	_, h := newTestService(t, Config{}, nil)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/?bill=95000&waste=10&shifts=3&offer=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Proszę o ofertę na podstawie moich wyliczeń:")
}

func TestConsent(t *testing.T) {
	_, h := newTestService(t, Config{}, nil)

	form := url.Values{"return": {"/?bill=1000"}}
	req := httptest.NewRequest(http.MethodPost, "/consent", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(h, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?bill=1000", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, ConsentCookie, cookies[0].Name)
	assert.Equal(t, "true", cookies[0].Value)
}

func TestSafeReturn(t *testing.T) {
	assert.Equal(t, "/", safeReturn(""))
	assert.Equal(t, "/", safeReturn("https://evil.example"))
	assert.Equal(t, "/", safeReturn("//evil.example"))
	assert.Equal(t, "/#kontakt", safeReturn("/#kontakt"))
}

func postJSON(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return do(h, req)
}

func TestLeadJSONValidation(t *testing.T) {
	sink := &captureSink{}
	_, h := newTestService(t, Config{}, sink)

	rec := postJSON(h, "/v1/leads", `{"email": "jan@example.com", "message": "  "}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation", body.Kind)
	assert.Equal(t, []string{leads.FieldName, leads.FieldMessage}, body.Invalid)
	assert.Equal(t, leads.FieldName, body.Focus)
	assert.Empty(t, sink.leads)
}

func TestLeadJSONAccepted(t *testing.T) {
	sink := &captureSink{}
	s, h := newTestService(t, Config{}, sink)

	rec := postJSON(h, "/v1/leads", `{
		"name": "Jan Kowalski",
		"email": "jan@example.com",
		"message": "Proszę o kontakt",
		"input": {"monthly_bill": 95000, "waste_tons": 10, "shift_count": 3}
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Len(t, sink.leads, 1)
	got := sink.leads[0]
	assert.Equal(t, "Jan Kowalski", got.Name)
	assert.Equal(t, "798\u00a0000 zł", got.Summary.YearlySavings)
	assert.False(t, got.CreatedAt.IsZero())

	st := s.snapshotStatus()
	assert.EqualValues(t, 1, st.Leads)
	assert.Equal(t, 1, st.EventCount)

	rec = do(h, httptest.NewRequest(http.MethodGet, "/v1/events", nil))
	assert.Contains(t, rec.Body.String(), `"type":"lead"`)
	assert.NotContains(t, rec.Body.String(), "jan@example.com", "events carry no contact details")
}

func TestLeadSinkFailure(t *testing.T) {
	sink := &captureSink{err: errors.New("disk full")}
	s, h := newTestService(t, Config{}, sink)

	rec := postJSON(h, "/v1/leads", `{"name": "A", "email": "a@b.pl", "message": "m"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "disk full", s.snapshotStatus().LastError)
}

func TestLeadRateLimit(t *testing.T) {
	_, h := newTestService(t, Config{LeadRateLimit: 2}, &captureSink{})

	body := `{"name": "A", "email": "a@b.pl", "message": "m"}`
	assert.Equal(t, http.StatusCreated, postJSON(h, "/v1/leads", body).Code)
	assert.Equal(t, http.StatusCreated, postJSON(h, "/v1/leads", body).Code)
	rec := postJSON(h, "/v1/leads", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"rate_limited"`)
}

func TestContactForm(t *testing.T) {
	sink := &captureSink{}
	_, h := newTestService(t, Config{}, sink)

	post := func(v url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(v.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return do(h, req)
	}

	rec := post(url.Values{leads.FieldName: {"Anna"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Anna"`)
	assert.Equal(t, 2, strings.Count(rec.Body.String(), `aria-invalid="true"`))
	assert.Empty(t, sink.leads)
	assert.Contains(t, rec.Body.String(), "name=\"calc-bill-monthly\" value=\"95\u00a0000 PLN\"")

	rec = post(url.Values{
		leads.FieldEmail:    {"anna@example.com"},
		leads.FieldMessage:  {"Oferta"},
		leads.HiddenBill:    {"200 000 PLN"},
		leads.HiddenWaste:   {"40 ton"},
		leads.HiddenShifts:  {"1"},
		leads.HiddenSolar:   {"Tak"},
		leads.HiddenSavings: {"1 440 000 zł"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="calc-bill-monthly" value="200 000 PLN"`)
	assert.Contains(t, body, `name="calc-waste-daily" value="40 ton"`)
	assert.Contains(t, body, `name="calc-shifts" value="1"`)
	assert.Contains(t, body, `name="calc-has_solar" value="Tak"`)
	assert.Contains(t, body, `name="calc-savings-yearly" value="1 440 000 zł"`)
	assert.Empty(t, sink.leads)

	rec = post(url.Values{
		leads.FieldName:    {"Anna"},
		leads.FieldEmail:   {"anna@example.com"},
		leads.FieldMessage: {"Oferta"},
		leads.HiddenShifts: {"2"},
		leads.HiddenSolar:  {"Tak"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?sent=1#kontakt", rec.Header().Get("Location"))
	require.Len(t, sink.leads, 1)
	assert.Equal(t, 2, sink.leads[0].Summary.Shifts)
	assert.Equal(t, "Tak", sink.leads[0].Summary.Solar)
}

func TestWriteSSE(t *testing.T) {
	var b strings.Builder
	writeSSE(&b, Event{ID: 7, Type: "lead"})
	out := b.String()
	assert.True(t, strings.HasPrefix(out, "id: 7\nevent: lead\ndata: {"))
	assert.True(t, strings.HasSuffix(out, "}\n\n"))
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, nil, nil, nil, nil)
	defer s.Close()

	s.publishEvent(Event{Type: "lead"})
	s.publishEvent(Event{Type: "lead"})
	s.publishEvent(Event{Type: "lead"})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}
