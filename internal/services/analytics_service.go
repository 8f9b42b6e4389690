package services

import (
	"sort"
	"strings"
	"time"

	"github.com/bharatcare/claims-backend/internal/models"
	"github.com/bharatcare/claims-backend/internal/store"
)

// KPI summarizes the claim book.
type KPI struct {
	Total       int     `json:"total"`
	Approved    int     `json:"approved"`
	Rejected    int     `json:"rejected"`
	UnderReview int     `json:"under_review"`
	Submitted   int     `json:"submitted"`
	TotalValue  float64 `json:"total_value"`
}

type StatusCount struct {
	Status models.ClaimStatus `json:"status"`
	Count  int                `json:"count"`
}

type DiagnosisCount struct {
	Diagnosis string `json:"diagnosis"`
	Count     int    `json:"count"`
}

type MonthlyTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// AnalyticsService computes read-only aggregates over the claim book.
type AnalyticsService struct {
	store store.Store
	now   func() time.Time
}

func NewAnalyticsService(st store.Store) *AnalyticsService {
	return &AnalyticsService{store: st, now: time.Now}
}

func (s *AnalyticsService) KPIs() (*KPI, error) {
	claims, err := s.store.ListClaims()
	if err != nil {
		return nil, err
	}
	kpi := &KPI{Total: len(claims)}
	for _, c := range claims {
		kpi.TotalValue += c.Amount
		switch c.Status {
		case models.ClaimApproved, models.ClaimSettled:
			kpi.Approved++
		case models.ClaimRejected:
			kpi.Rejected++
		case models.ClaimUnderReview:
			kpi.UnderReview++
		case models.ClaimSubmitted:
			kpi.Submitted++
		}
	}
	return kpi, nil
}

func (s *AnalyticsService) ByStatus() ([]StatusCount, error) {
	claims, err := s.store.ListClaims()
	if err != nil {
		return nil, err
	}
	counts := make(map[models.ClaimStatus]int)
	for _, c := range claims {
		counts[c.Status]++
	}
	statuses := []models.ClaimStatus{
		models.ClaimSubmitted, models.ClaimUnderReview,
		models.ClaimApproved, models.ClaimSettled, models.ClaimRejected,
	}
	out := make([]StatusCount, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, StatusCount{Status: st, Count: counts[st]})
	}
	return out, nil
}

func (s *AnalyticsService) ByDiagnosis() ([]DiagnosisCount, error) {
	claims, err := s.store.ListClaims()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, c := range claims {
		counts[strings.TrimSpace(c.Diagnosis)]++
	}
	out := make([]DiagnosisCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, DiagnosisCount{Diagnosis: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Diagnosis < out[j].Diagnosis
	})
	return out, nil
}

// MonthlyTotals sums approved and settled claim amounts per month for the
// trailing window, oldest first.
func (s *AnalyticsService) MonthlyTotals(months int) ([]MonthlyTotal, error) {
	if months <= 0 {
		months = 6
	}
	claims, err := s.store.ListClaims()
	if err != nil {
		return nil, err
	}

	type bucket struct {
		label string
		total float64
	}
	keys := make([]string, 0, months)
	buckets := make(map[string]*bucket, months)
	now := s.now()
	for i := months - 1; i >= 0; i-- {
		d := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		key := d.Format("2006-01")
		keys = append(keys, key)
		buckets[key] = &bucket{label: d.Format("Jan 2006")}
	}
	for _, c := range claims {
		if c.Status != models.ClaimApproved && c.Status != models.ClaimSettled {
			continue
		}
		if b, ok := buckets[c.CreatedAt.Format("2006-01")]; ok {
			b.total += c.Amount
		}
	}

	out := make([]MonthlyTotal, 0, months)
	for _, key := range keys {
		out = append(out, MonthlyTotal{Month: buckets[key].label, Total: buckets[key].total})
	}
	return out, nil
}
