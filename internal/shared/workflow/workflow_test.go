package workflow_test

import (
	"errors"
	"testing"

	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/entity"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/shared/workflow"
)

func newRequest(status string) *entity.MaintenanceRequest {
	return &entity.MaintenanceRequest{
		ID:                 1,
		Title:              "Press misalignment",
		ProblemDescription: "Die alignment drifting on press 2",
		Process:            "Stamping",
		Equipment:          "Press 2",
		GutGravity:         3,
		GutUrgency:         4,
		GutTendency:        5,
		Status:             status,
		RequesterID:        10,
	}
}

func uintPtr(v uint) *uint { return &v }

func TestGUTScore(t *testing.T) {
	score, err := workflow.GUTScore(3, 4, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 60 {
		t.Errorf("score = %d, want 60", score)
	}

	// Boundaries are inclusive.
	if _, err := workflow.GUTScore(1, 1, 1); err != nil {
		t.Errorf("GUTScore(1,1,1) error: %v", err)
	}
	if _, err := workflow.GUTScore(5, 5, 5); err != nil {
		t.Errorf("GUTScore(5,5,5) error: %v", err)
	}

	_, err = workflow.GUTScore(0, 4, 6)
	if !workflow.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var ve *workflow.ValidationError
	errors.As(err, &ve)
	if len(ve.Fields) != 2 {
		t.Errorf("fields = %v, want gut_gravity and gut_tendency", ve.Fields)
	}
}

func TestAuthorizeChecksCapabilityOnly(t *testing.T) {
	if err := workflow.Authorize(entity.RoleApproverProd, workflow.ActionApproveProduction); err != nil {
		t.Errorf("production approver should hold approve_production: %v", err)
	}
	if err := workflow.Authorize(entity.RoleRequester, workflow.ActionApproveProduction); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("requester approve_production = %v, want ErrForbidden", err)
	}
	if err := workflow.Authorize(entity.RoleExecutor, workflow.ActionApproveMaintenance); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("executor approve_maintenance = %v, want ErrForbidden", err)
	}

	// Capability is status-independent: the manager holds approve_manager
	// even when no request is waiting.
	if err := workflow.Authorize(entity.RoleManagerMaint, workflow.ActionApproveManager); err != nil {
		t.Errorf("manager approve_manager: %v", err)
	}
}

func TestDecideForbiddenBeforeInvalidTransition(t *testing.T) {
	// Wrong role AND wrong status: capability loses first, so the caller
	// learns "you may never do this" rather than "not right now".
	req := newRequest(entity.StatusDone)
	_, err := workflow.Decide(req, workflow.ActionApproveProduction, workflow.Payload{}, workflow.Actor{ID: 10, Role: entity.RoleRequester})
	if !errors.Is(err, workflow.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestDecideWrongStatus(t *testing.T) {
	req := newRequest(entity.StatusWaitingMaint)
	_, err := workflow.Decide(req, workflow.ActionApproveProduction, workflow.Payload{}, workflow.Actor{ID: 2, Role: entity.RoleApproverProd})
	if !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestApproveProduction(t *testing.T) {
	req := newRequest(entity.StatusOpen)
	out, err := workflow.Decide(req, workflow.ActionApproveProduction, workflow.Payload{}, workflow.Actor{ID: 2, Role: entity.RoleApproverProd})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ToStatus != entity.StatusWaitingProd {
		t.Errorf("to = %s, want %s", out.ToStatus, entity.StatusWaitingProd)
	}
	if out.HistoryAction != entity.HistoryApprovedProd {
		t.Errorf("history = %s, want %s", out.HistoryAction, entity.HistoryApprovedProd)
	}
	if out.NotifyRole != entity.RoleApproverMaint {
		t.Errorf("notify = %s, want %s", out.NotifyRole, entity.RoleApproverMaint)
	}
	if req.Status != entity.StatusOpen {
		t.Errorf("Decide mutated the request: status = %s", req.Status)
	}
}

func TestScheduleMaintenance(t *testing.T) {
	req := newRequest(entity.StatusWaitingProd)
	out, err := workflow.Decide(req, workflow.ActionScheduleMaintenance, workflow.Payload{}, workflow.Actor{ID: 3, Role: entity.RoleApproverMaint})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ToStatus != entity.StatusWaitingMaint {
		t.Errorf("to = %s, want %s", out.ToStatus, entity.StatusWaitingMaint)
	}
}

func TestApproveMaintenanceTechnical(t *testing.T) {
	req := newRequest(entity.StatusWaitingMaint)
	actor := workflow.Actor{ID: 3, Role: entity.RoleApproverMaint}

	// Missing executor.
	_, err := workflow.Decide(req, workflow.ActionApproveMaintenance, workflow.Payload{Type: entity.TypeTechnical}, actor)
	if !workflow.IsValidation(err) {
		t.Fatalf("missing executor: err = %v, want validation error", err)
	}

	out, err := workflow.Decide(req, workflow.ActionApproveMaintenance, workflow.Payload{
		Type:       entity.TypeTechnical,
		ExecutorID: uintPtr(7),
	}, actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ToStatus != entity.StatusInExecution {
		t.Errorf("to = %s, want %s", out.ToStatus, entity.StatusInExecution)
	}
	if out.AssignTo == nil || *out.AssignTo != 7 {
		t.Errorf("assign = %v, want 7", out.AssignTo)
	}
	if out.SetType != entity.TypeTechnical {
		t.Errorf("type = %s, want %s", out.SetType, entity.TypeTechnical)
	}
}

func TestApproveMaintenanceEngineering(t *testing.T) {
	req := newRequest(entity.StatusWaitingMaint)
	out, err := workflow.Decide(req, workflow.ActionApproveMaintenance, workflow.Payload{
		Type: entity.TypeEngineering,
	}, workflow.Actor{ID: 3, Role: entity.RoleApproverMaint})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ToStatus != entity.StatusWaitingManager {
		t.Errorf("to = %s, want %s", out.ToStatus, entity.StatusWaitingManager)
	}
	if out.NotifyRole != entity.RoleManagerMaint {
		t.Errorf("notify = %s, want %s", out.NotifyRole, entity.RoleManagerMaint)
	}
	if out.AssignTo != nil {
		t.Errorf("engineering approval must not assign; got %v", *out.AssignTo)
	}
}

func TestApproveMaintenanceUnknownType(t *testing.T) {
	req := newRequest(entity.StatusWaitingMaint)
	_, err := workflow.Decide(req, workflow.ActionApproveMaintenance, workflow.Payload{Type: "URGENT"}, workflow.Actor{ID: 3, Role: entity.RoleApproverMaint})
	if !workflow.IsValidation(err) {
		t.Fatalf("err = %v, want validation error on type", err)
	}
}

func TestRejectMaintenanceRoleNarrowing(t *testing.T) {
	approver := workflow.Actor{ID: 3, Role: entity.RoleApproverMaint}
	manager := workflow.Actor{ID: 4, Role: entity.RoleManagerMaint}

	// Each role may only reject out of its own queue.
	if _, err := workflow.Decide(newRequest(entity.StatusWaitingManager), workflow.ActionRejectMaintenance, workflow.Payload{}, approver); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("approver rejecting from manager queue: err = %v, want ErrForbidden", err)
	}
	if _, err := workflow.Decide(newRequest(entity.StatusWaitingMaint), workflow.ActionRejectMaintenance, workflow.Payload{}, manager); !errors.Is(err, workflow.ErrForbidden) {
		t.Errorf("manager rejecting from approver queue: err = %v, want ErrForbidden", err)
	}

	out, err := workflow.Decide(newRequest(entity.StatusWaitingMaint), workflow.ActionRejectMaintenance, workflow.Payload{Comment: "no spare parts"}, approver)
	if err != nil {
		t.Fatalf("approver reject: %v", err)
	}
	if out.ToStatus != entity.StatusRejected {
		t.Errorf("to = %s, want %s", out.ToStatus, entity.StatusRejected)
	}

	out, err = workflow.Decide(newRequest(entity.StatusWaitingManager), workflow.ActionRejectMaintenance, workflow.Payload{}, manager)
	if err != nil {
		t.Fatalf("manager reject: %v", err)
	}
	if out.ToStatus != entity.StatusRejected {
		t.Errorf("to = %s, want %s", out.ToStatus, entity.StatusRejected)
	}
}

func TestApproveManagerRequiresEngineer(t *testing.T) {
	req := newRequest(entity.StatusWaitingManager)
	actor := workflow.Actor{ID: 4, Role: entity.RoleManagerMaint}

	_, err := workflow.Decide(req, workflow.ActionApproveManager, workflow.Payload{}, actor)
	if !workflow.IsValidation(err) {
		t.Fatalf("missing engineer: err = %v, want validation error", err)
	}

	out, err := workflow.Decide(req, workflow.ActionApproveManager, workflow.Payload{EngineerID: uintPtr(9)}, actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ToStatus != entity.StatusInExecution {
		t.Errorf("to = %s, want %s", out.ToStatus, entity.StatusInExecution)
	}
	if out.AssignTo == nil || *out.AssignTo != 9 {
		t.Errorf("assign = %v, want 9", out.AssignTo)
	}
}

func TestFinishExecution(t *testing.T) {
	req := newRequest(entity.StatusInExecution)
	req.AssignedToID = uintPtr(7)

	// Only the assignee may close, even among executors.
	_, err := workflow.Decide(req, workflow.ActionFinishExecution, workflow.Payload{
		ExecutionDescription: "replaced bearing",
		PM04Order:            "12345",
	}, workflow.Actor{ID: 8, Role: entity.RoleExecutor})
	if !errors.Is(err, workflow.ErrForbidden) {
		t.Fatalf("non-assignee: err = %v, want ErrForbidden", err)
	}

	// Closeout fields are mandatory.
	_, err = workflow.Decide(req, workflow.ActionFinishExecution, workflow.Payload{}, workflow.Actor{ID: 7, Role: entity.RoleExecutor})
	var ve *workflow.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("empty closeout: err = %v, want validation error", err)
	}
	if len(ve.Fields) != 2 {
		t.Errorf("fields = %v, want execution_description and pm04_order", ve.Fields)
	}

	// "N/A" is an accepted order number, not an empty one.
	out, err := workflow.Decide(req, workflow.ActionFinishExecution, workflow.Payload{
		ExecutionDescription: "replaced bearing, realigned belt",
		PM04Order:            "N/A",
	}, workflow.Actor{ID: 7, Role: entity.RoleExecutor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ToStatus != entity.StatusDone || !out.Finish {
		t.Errorf("outcome = %+v, want DONE with Finish", out)
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	if !workflow.Terminal(entity.StatusDone) || !workflow.Terminal(entity.StatusRejected) {
		t.Fatal("DONE and REJECTED must be terminal")
	}
	if workflow.Terminal(entity.StatusOpen) {
		t.Fatal("OPEN must not be terminal")
	}

	for _, status := range []string{entity.StatusDone, entity.StatusRejected} {
		for _, action := range workflow.Actions() {
			for _, src := range workflow.SourceStates(action) {
				if src == status {
					t.Errorf("action %s transitions out of terminal status %s", action, status)
				}
			}
		}
	}
}

func TestStageOrder(t *testing.T) {
	order := []string{
		entity.StatusOpen,
		entity.StatusWaitingProd,
		entity.StatusWaitingMaint,
		entity.StatusWaitingManager,
		entity.StatusInExecution,
		entity.StatusDone,
	}
	for i, status := range order {
		if got := workflow.Stage(status); got != i {
			t.Errorf("Stage(%s) = %d, want %d", status, got, i)
		}
	}
	if got := workflow.Stage(entity.StatusRejected); got != -1 {
		t.Errorf("Stage(REJECTED) = %d, want -1", got)
	}
	if got := workflow.Stage("BOGUS"); got != -1 {
		t.Errorf("Stage(BOGUS) = %d, want -1", got)
	}
}
