package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/upthermo/orcalc/internal/leads"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "orcalc.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConsentRoundTrip(t *testing.T) {
	s := openTemp(t)

	ok, err := s.Consent()
	if err != nil {
		t.Fatalf("Consent: %v", err)
	}
	if ok {
		t.Fatal("fresh store should not have consent")
	}

	if err := s.SetConsent(true); err != nil {
		t.Fatalf("SetConsent(true): %v", err)
	}
	// Accepting twice must not fail.
	if err := s.SetConsent(true); err != nil {
		t.Fatalf("SetConsent(true) again: %v", err)
	}
	if ok, _ := s.Consent(); !ok {
		t.Fatal("consent not persisted")
	}

	if err := s.SetConsent(false); err != nil {
		t.Fatalf("SetConsent(false): %v", err)
	}
	if ok, _ := s.Consent(); ok {
		t.Fatal("consent not cleared")
	}
}

func TestConsentSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orcalc.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SetConsent(true); err != nil {
		t.Fatalf("SetConsent: %v", err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s.Close() }()
	if ok, _ := s.Consent(); !ok {
		t.Error("consent lost after reopen")
	}
}

func TestSaveAndListLeads(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"Anna", "Bartek", "Celina"} {
		id, err := s.SaveLead(ctx, leads.Lead{
			Name:    name,
			Email:   name + "@example.com",
			Message: "oferta",
			Summary: leads.Summary{
				Bill:   "95 000 PLN",
				Shifts: 3,
				Solar:  "Nie",
			},
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("SaveLead(%s): %v", name, err)
		}
		if id != int64(i+1) {
			t.Errorf("SaveLead(%s) id = %d, want %d", name, id, i+1)
		}
	}

	n, err := s.LeadCount()
	if err != nil || n != 3 {
		t.Fatalf("LeadCount = %d, %v; want 3", n, err)
	}

	got, err := s.ListLeads(ctx, 2)
	if err != nil {
		t.Fatalf("ListLeads: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListLeads(2) returned %d leads", len(got))
	}
	if got[0].Name != "Celina" || got[1].Name != "Bartek" {
		t.Errorf("order = %s, %s; want newest first", got[0].Name, got[1].Name)
	}
	if got[0].Summary.Shifts != 3 || got[0].Summary.Solar != "Nie" {
		t.Errorf("summary not round-tripped: %+v", got[0].Summary)
	}
	if !got[0].CreatedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("CreatedAt = %v", got[0].CreatedAt)
	}

	all, err := s.ListLeads(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListLeads(0) = %d, %v; want 3", len(all), err)
	}
}

func TestSinkSavesLead(t *testing.T) {
	s := openTemp(t)
	if err := s.Sink().Save(context.Background(), leads.Lead{Name: "X", Email: "x@y.pl", Message: "m"}); err != nil {
		t.Fatalf("Sink.Save: %v", err)
	}
	if n, _ := s.LeadCount(); n != 1 {
		t.Errorf("LeadCount = %d, want 1", n)
	}
}
