package service

import (
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/entity"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/shared/workflow"
)

// RequestView is the read representation handed to the presentation
// layer: the stored record plus everything derived from it (GUT score,
// status label, progress stage) so the frontend never re-encodes workflow
// ordering or scoring.
type RequestView struct {
	entity.MaintenanceRequest
	GutScore    int    `json:"gut_score"`
	StatusLabel string `json:"status_label"`
	TypeLabel   string `json:"type_label,omitempty"`
	Stage       int    `json:"stage"`
	Critical    bool   `json:"critical"`
	Terminal    bool   `json:"terminal"`
}

var typeLabels = map[string]string{
	entity.TypeTechnical:   "Technical",
	entity.TypeEngineering: "Engineering",
}

// NewRequestView derives the view for one record.
func NewRequestView(req entity.MaintenanceRequest) RequestView {
	return RequestView{
		MaintenanceRequest: req,
		GutScore:           req.GUTScore(),
		StatusLabel:        entity.StatusLabel(req.Status),
		TypeLabel:          typeLabels[req.Type],
		Stage:              workflow.Stage(req.Status),
		Critical:           req.Critical(),
		Terminal:           workflow.Terminal(req.Status),
	}
}

// NewRequestViews derives views for a slice of records, preserving order.
func NewRequestViews(reqs []entity.MaintenanceRequest) []RequestView {
	views := make([]RequestView, len(reqs))
	for i, req := range reqs {
		views[i] = NewRequestView(req)
	}
	return views
}
