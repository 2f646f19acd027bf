package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"creditwatch/domain/dataset"
	"creditwatch/internal/errors"
)

const defaultHistoryLimit = 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLatestDrift returns the most recent persisted drift report
func (s *Server) handleLatestDrift(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.Latest(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if report == nil {
		s.writeError(w, errors.NotFound("drift report"))
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// handleDriftHistory returns recent reports, newest first
func (s *Server) handleDriftHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(w, errors.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	reports, err := s.reports.ListRecent(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

// handleDriftCheck runs a detection pass now and returns the fresh report.
// The report is persisted like a scheduled check; a failed save is logged
// but the report still comes back.
func (s *Server) handleDriftCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reference, err := s.provider.Reference(ctx)
	if err != nil {
		s.writeError(w, errors.Wrap(err, "failed to load reference data"))
		return
	}
	current, err := s.provider.Current(ctx)
	if err != nil {
		s.writeError(w, errors.Wrap(err, "failed to collect current data"))
		return
	}
	if reference == nil || reference.Len() == 0 || current == nil || current.Len() == 0 {
		s.writeError(w, errors.InvalidInput("insufficient data for drift detection"))
		return
	}

	report, err := s.drift.Detect(ctx, reference, current, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.reports.Save(ctx, report); err != nil {
		s.logger.Error("failed to save drift report %s: %v", report.ID, err)
	}

	s.writeJSON(w, http.StatusOK, report)
}

// fairnessRequest is the body for a fairness analysis
type fairnessRequest struct {
	Records           []dataset.Record `json:"records"`
	Predictions       []int            `json:"predictions"`
	SensitiveFeatures []string         `json:"sensitive_features,omitempty"`
}

func (s *Server) handleFairness(w http.ResponseWriter, r *http.Request) {
	var req fairnessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.InvalidInput("invalid request body"))
		return
	}

	analysis, err := s.fairness.Analyze(r.Context(), dataset.NewBatch(req.Records), req.Predictions, req.SensitiveFeatures)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"fairness_score":     analysis.OverallScore,
		"demographic_parity": analysis.DemographicParity,
		"equal_opportunity":  analysis.EqualOpportunity,
		"disparate_impact":   analysis.DisparateImpact,
		"statistical_parity": analysis.StatisticalParity,
		"recommendations":    analysis.Recommendations,
	})
}

// handleRetrainingDecision evaluates the retraining conditions without
// triggering a job
func (s *Server) handleRetrainingDecision(w http.ResponseWriter, r *http.Request) {
	decision, err := s.retraining.Evaluate(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, decision)
}
