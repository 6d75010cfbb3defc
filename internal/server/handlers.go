package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/upthermo/orcalc/internal/calculator"
	"github.com/upthermo/orcalc/internal/cli"
	"github.com/upthermo/orcalc/internal/leads"
	"github.com/upthermo/orcalc/internal/production"
	"github.com/upthermo/orcalc/internal/server/page"

	"github.com/shopspring/decimal"
)

// ConsentCookie is the cookie remembering that the cookie notice was
// accepted.
const ConsentCookie = "cookies-accepted"

// EstimateResponse is the JSON body of /v1/estimate.
type EstimateResponse struct {
	Estimate calculator.Estimate `json:"estimate"`
	Inaction calculator.Inaction `json:"inaction"`
	Tier     string              `json:"tier"`
	Display  Display             `json:"display"`
}

// Display carries the pl-PL strings the page shows for an estimate.
type Display struct {
	Bill                string        `json:"bill"`
	Waste               string        `json:"waste"`
	SavingsRate         string        `json:"savings_rate"`
	MonthlySavings      string        `json:"monthly_savings"`
	YearlySavings       string        `json:"yearly_savings"`
	CurrentYearlyBill   string        `json:"current_yearly_bill"`
	TotalMonthlyBenefit string        `json:"total_monthly_benefit"`
	Context             string        `json:"context"`
	ContextHTML         string        `json:"context_html"`
	Bonuses             []string      `json:"bonuses"`
	Inaction            []string      `json:"inaction"`
	Summary             leads.Summary `json:"summary"`
	OfferMessage        string        `json:"offer_message"`
}

func newEstimateResponse(est calculator.Estimate) EstimateResponse {
	inaction := est.Inaction()
	summary := leads.Summarize(est)
	return EstimateResponse{
		Estimate: est,
		Inaction: inaction,
		Tier:     est.Tier().String(),
		Display: Display{
			Bill:                summary.Bill,
			Waste:               summary.Waste,
			SavingsRate:         cli.FormatRate(est.SavingsRate),
			MonthlySavings:      cli.FormatMoney(est.MonthlySavings),
			YearlySavings:       summary.YearlySavings,
			CurrentYearlyBill:   cli.FormatMoney(est.CurrentYearlyBill),
			TotalMonthlyBenefit: cli.FormatMoney(est.TotalMonthlyBenefit),
			Context:             cli.ContextSentence(est),
			ContextHTML:         cli.ContextHTML(est),
			Bonuses:             cli.Bonuses(est.HasSolar),
			Inaction: []string{
				cli.FormatLoss(inaction.Daily),
				cli.FormatLoss(inaction.OneMonth),
				cli.FormatLoss(inaction.SixMonths),
				cli.FormatLoss(inaction.TwelveMonths),
			},
			Summary:      summary,
			OfferMessage: leads.OfferMessage(summary),
		},
	}
}

// cacheKey canonicalizes an input so "95000" and "95 000.00" share an entry.
func cacheKey(in calculator.Input) string {
	return fmt.Sprintf("%s|%d|%d|%t", in.MonthlyBill.String(), in.WasteTons, in.ShiftCount, in.HasSolar)
}

func (s *Service) handleEstimateQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in, err := calculator.ParseInput(calculator.RawInput{
		Bill:   q.Get("bill"),
		Waste:  q.Get("waste"),
		Shifts: q.Get("shifts"),
		Solar:  q.Get("solar"),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	s.serveEstimate(w, r, in)
}

type estimateRequest struct {
	MonthlyBill *decimal.Decimal `json:"monthly_bill"`
	WasteTons   *int             `json:"waste_tons"`
	ShiftCount  *int             `json:"shift_count"`
	HasSolar    bool             `json:"has_solar"`
}

func (req estimateRequest) input() (calculator.Input, error) {
	if req.MonthlyBill == nil {
		return calculator.Input{}, &calculator.InputError{Field: calculator.FieldBill}
	}
	if req.WasteTons == nil {
		return calculator.Input{}, &calculator.InputError{Field: calculator.FieldWaste}
	}
	if *req.WasteTons < 0 {
		return calculator.Input{}, &calculator.InputError{Field: calculator.FieldWaste, Value: strconv.Itoa(*req.WasteTons)}
	}
	in := calculator.Input{
		MonthlyBill: *req.MonthlyBill,
		WasteTons:   *req.WasteTons,
		ShiftCount:  calculator.DefaultShiftCount,
		HasSolar:    req.HasSolar,
	}
	if req.ShiftCount != nil {
		in.ShiftCount = *req.ShiftCount
	}
	return in, nil
}

func (s *Service) handleEstimateJSON(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "decoding request: "+err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	s.serveEstimate(w, r, in)
}

func (s *Service) serveEstimate(w http.ResponseWriter, r *http.Request, in calculator.Input) {
	ctx := r.Context()
	key := cacheKey(in)

	s.mu.Lock()
	s.estimates++
	s.mu.Unlock()

	if body, ok := s.cache.Get(ctx, key); ok {
		s.mu.Lock()
		s.cacheHits++
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		_, _ = w.Write([]byte(body))
		return
	}

	est, err := s.calc.Estimate(in)
	if err != nil {
		if errors.Is(err, calculator.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	data, err := json.Marshal(newEstimateResponse(est))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	data = append(data, '\n')

	if err := s.cache.Set(ctx, key, string(data), s.cfg.CacheTTL); err != nil {
		s.logger.Warn("estimate cache write failed", "cache", s.cache.Name(), "err", err)
		s.recordError(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "miss")
	_, _ = w.Write(data)
}

func (s *Service) handleProduction(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, production.Comparison())
}

func (s *Service) handleTimeline(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, production.Steps())
}

func (s *Service) handleConsent(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	http.SetCookie(w, &http.Cookie{
		Name:     ConsentCookie,
		Value:    "true",
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, safeReturn(r.FormValue("return")), http.StatusSeeOther)
}

// safeReturn keeps redirects on this site.
func safeReturn(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/"
	}
	return target
}

func hasConsent(r *http.Request) bool {
	c, err := r.Cookie(ConsentCookie)
	return err == nil && c.Value == "true"
}

// landingInput reads the calculator controls from the query. Missing fields
// take the configured defaults and malformed ones are coerced.
func (s *Service) landingInput(q url.Values) calculator.Input {
	d := s.cfg.Defaults
	raw := calculator.RawInput{
		Bill:   d.MonthlyBill.String(),
		Waste:  strconv.Itoa(d.WasteTons),
		Shifts: strconv.Itoa(d.ShiftCount),
		Solar:  strconv.FormatBool(d.HasSolar),
	}
	if q.Has("bill") {
		raw.Bill = q.Get("bill")
	}
	if q.Has("waste") {
		raw.Waste = q.Get("waste")
	}
	if q.Has("shifts") {
		raw.Shifts = q.Get("shifts")
	}
	if q.Has("solar") {
		raw.Solar = q.Get("solar")
	} else if q.Has("bill") {
		// An unchecked checkbox is simply absent from a submitted form.
		raw.Solar = ""
	}

	in, errs := calculator.CoerceInput(raw)
	for _, err := range errs {
		s.logger.Debug("coerced calculator input", "err", err)
	}
	return in
}

// contactInput rebuilds the calculator input from the hidden fields of a
// posted contact form. Missing fields take the configured defaults.
func (s *Service) contactInput(sum leads.Summary) calculator.Input {
	raw := sum.RawInput()
	q := url.Values{}
	for key, v := range map[string]string{
		"bill":   raw.Bill,
		"waste":  raw.Waste,
		"shifts": raw.Shifts,
		"solar":  raw.Solar,
	} {
		if v != "" {
			q.Set(key, v)
		}
	}
	return s.landingInput(q)
}

func (s *Service) estimateOrBaseline(in calculator.Input) calculator.Estimate {
	est, err := s.calc.Estimate(in)
	if err != nil {
		s.logger.Debug("estimate fell back to baseline", "err", err)
		est, _ = s.calc.Estimate(calculator.Input{MonthlyBill: decimal.Zero, ShiftCount: calculator.DefaultShiftCount})
	}
	return est
}

func (s *Service) handleLanding(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	est := s.estimateOrBaseline(s.landingInput(q))
	summary := leads.Summarize(est)

	contact := page.Contact{Sent: q.Get("sent") == "1"}
	if q.Get("offer") == "1" {
		contact.Values = map[string]string{leads.FieldMessage: leads.OfferMessage(summary)}
		contact.Focus = leads.FieldMessage
	}

	s.renderPage(w, http.StatusOK, page.Model{
		Estimate: est,
		Summary:  summary,
		Consent:  hasConsent(r),
		Chart:    production.Comparison(),
		Steps:    production.Steps(),
		Contact:  contact,
		Path:     r.URL.RequestURI(),
	})
}

func (s *Service) renderPage(w http.ResponseWriter, status int, d page.Model) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Landing(d).Render(w); err != nil {
		s.logger.Error("rendering landing page", "err", err)
	}
}

// saveLead validates and stores a lead. It returns the validation result;
// a non-nil error means the sink failed.
func (s *Service) saveLead(r *http.Request, lead leads.Lead) (leads.Result, error) {
	res := lead.Validate()
	if !res.OK() {
		return res, nil
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	if err := s.sink.Save(r.Context(), lead); err != nil {
		s.recordError(err)
		return res, err
	}

	s.mu.Lock()
	s.leadCount++
	s.mu.Unlock()

	s.publishEvent(Event{Type: "lead", Timestamp: lead.CreatedAt, Summary: lead.Summary})
	s.logger.Info("lead accepted", "savings", lead.Summary.YearlySavings)
	return res, nil
}

func (s *Service) handleContactForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	shifts, _ := strconv.Atoi(r.PostFormValue(leads.HiddenShifts))
	lead := leads.Lead{
		Name:    r.PostFormValue(leads.FieldName),
		Email:   r.PostFormValue(leads.FieldEmail),
		Phone:   r.PostFormValue(leads.FieldPhone),
		Company: r.PostFormValue(leads.FieldCompany),
		Message: r.PostFormValue(leads.FieldMessage),
		Summary: leads.Summary{
			Bill:          r.PostFormValue(leads.HiddenBill),
			Waste:         r.PostFormValue(leads.HiddenWaste),
			Shifts:        shifts,
			Solar:         r.PostFormValue(leads.HiddenSolar),
			YearlySavings: r.PostFormValue(leads.HiddenSavings),
		},
	}

	res, err := s.saveLead(r, lead)
	if err != nil {
		s.logger.Error("saving lead", "err", err)
		http.Error(w, "could not save the message, please try again", http.StatusInternalServerError)
		return
	}
	if res.OK() {
		http.Redirect(w, r, "/?sent=1#kontakt", http.StatusSeeOther)
		return
	}

	// The hidden calculator fields go back exactly as posted so a corrected
	// resubmission still carries the visitor's calculation.
	est := s.estimateOrBaseline(s.contactInput(lead.Summary))
	s.renderPage(w, http.StatusUnprocessableEntity, page.Model{
		Estimate: est,
		Summary:  lead.Summary.Or(leads.Summarize(est)),
		Consent:  hasConsent(r),
		Chart:    production.Comparison(),
		Steps:    production.Steps(),
		Contact: page.Contact{
			Values: map[string]string{
				leads.FieldName:    lead.Name,
				leads.FieldEmail:   lead.Email,
				leads.FieldPhone:   lead.Phone,
				leads.FieldCompany: lead.Company,
				leads.FieldMessage: lead.Message,
			},
			Invalid: res,
			Focus:   res.FirstInvalid,
		},
		Path: "/",
	})
}

type leadRequest struct {
	Name    string           `json:"name"`
	Email   string           `json:"email"`
	Phone   string           `json:"phone"`
	Company string           `json:"company"`
	Message string           `json:"message"`
	Input   *estimateRequest `json:"input"`
}

type leadResponse struct {
	Status  string        `json:"status"`
	Summary leads.Summary `json:"summary"`
}

func (s *Service) handleLeadJSON(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "decoding request: "+err.Error())
		return
	}

	lead := leads.Lead{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Message: req.Message,
	}
	if req.Input != nil {
		in, err := req.Input.input()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		est, err := s.calc.Estimate(in)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		lead.Summary = leads.Summarize(est)
	}

	res, err := s.saveLead(r, lead)
	if err != nil {
		s.logger.Error("saving lead", "err", err)
		writeError(w, http.StatusInternalServerError, "storage", "could not save lead")
		return
	}
	if !res.OK() {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "required fields are empty",
			Kind:    "validation",
			Invalid: res.Invalid,
			Focus:   res.FirstInvalid,
		})
		return
	}

	writeJSON(w, http.StatusCreated, leadResponse{Status: "accepted", Summary: lead.Summary})
}
