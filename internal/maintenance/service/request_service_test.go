package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/entity"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/service"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/testutil"
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/shared/workflow"
)

func TestCreateRequest(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := testutil.NewTestServices(t, db)
	requester := testutil.SeedUser(t, db, "joao", entity.RoleRequester)

	req, err := svc.Request.Create(context.Background(), testCreateInput(), requester.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if req.Status != entity.StatusOpen {
		t.Errorf("status = %s, want OPEN", req.Status)
	}
	if req.GUTScore() != 60 {
		t.Errorf("gut score = %d, want 60", req.GUTScore())
	}

	loaded, err := svc.Request.Get(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(loaded.History) != 1 || loaded.History[0].Action != entity.HistoryCreated {
		t.Errorf("history = %+v, want one CREATED row", loaded.History)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := testutil.NewTestServices(t, db)
	requester := testutil.SeedUser(t, db, "joao", entity.RoleRequester)

	in := testCreateInput()
	in.Title = "   "
	in.GutGravity = 6
	_, err := svc.Request.Create(context.Background(), in, requester.ID)
	if !workflow.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestFullTechnicalPath(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := testutil.NewTestServices(t, db)
	ctx := context.Background()

	requester := testutil.SeedUser(t, db, "joao", entity.RoleRequester)
	prod := testutil.SeedUser(t, db, "ana", entity.RoleApproverProd)
	maint := testutil.SeedUser(t, db, "carlos", entity.RoleApproverMaint)
	executor := testutil.SeedUser(t, db, "pedro", entity.RoleExecutor)

	req := testutil.SeedRequest(t, db, requester.ID, entity.StatusOpen)

	steps := []struct {
		action  workflow.Action
		payload workflow.Payload
		actor   workflow.Actor
		want    string
	}{
		{workflow.ActionApproveProduction, workflow.Payload{}, workflow.Actor{ID: prod.ID, Role: prod.Role}, entity.StatusWaitingProd},
		{workflow.ActionScheduleMaintenance, workflow.Payload{}, workflow.Actor{ID: maint.ID, Role: maint.Role}, entity.StatusWaitingMaint},
		{workflow.ActionApproveMaintenance, workflow.Payload{Type: entity.TypeTechnical, ExecutorID: &executor.ID}, workflow.Actor{ID: maint.ID, Role: maint.Role}, entity.StatusInExecution},
		{workflow.ActionFinishExecution, workflow.Payload{ExecutionDescription: "replaced bearing", PM04Order: "40012345", TechnicianName: "Pedro"}, workflow.Actor{ID: executor.ID, Role: executor.Role}, entity.StatusDone},
	}

	for _, step := range steps {
		updated, err := svc.Request.ApplyTransition(ctx, req.ID, step.action, step.payload, step.actor)
		if err != nil {
			t.Fatalf("%s: %v", step.action, err)
		}
		if updated.Status != step.want {
			t.Fatalf("%s: status = %s, want %s", step.action, updated.Status, step.want)
		}
	}

	final, err := svc.Request.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if final.FinishedAt == nil {
		t.Error("finished_at not set")
	}
	if final.Type != entity.TypeTechnical {
		t.Errorf("type = %s, want TECHNICAL", final.Type)
	}
	if final.AssignedToID == nil || *final.AssignedToID != executor.ID {
		t.Errorf("assigned_to = %v, want %d", final.AssignedToID, executor.ID)
	}
	if final.PM04Order != "40012345" {
		t.Errorf("pm04 = %s, want 40012345", final.PM04Order)
	}
	// Seeded directly at OPEN, so no CREATED row; one row per transition.
	if len(final.History) != 4 {
		t.Errorf("history rows = %d, want 4", len(final.History))
	}
}

func TestEngineeringPath(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := testutil.NewTestServices(t, db)
	ctx := context.Background()

	requester := testutil.SeedUser(t, db, "joao", entity.RoleRequester)
	maint := testutil.SeedUser(t, db, "carlos", entity.RoleApproverMaint)
	manager := testutil.SeedUser(t, db, "marta", entity.RoleManagerMaint)
	engineer := testutil.SeedUser(t, db, "luiz", entity.RoleEngineerMech)

	req := testutil.SeedRequest(t, db, requester.ID, entity.StatusWaitingMaint)

	updated, err := svc.Request.ApplyTransition(ctx, req.ID, workflow.ActionApproveMaintenance,
		workflow.Payload{Type: entity.TypeEngineering},
		workflow.Actor{ID: maint.ID, Role: maint.Role})
	if err != nil {
		t.Fatalf("approve_maintenance: %v", err)
	}
	if updated.Status != entity.StatusWaitingManager {
		t.Fatalf("status = %s, want WAITING_MANAGER", updated.Status)
	}

	updated, err = svc.Request.ApplyTransition(ctx, req.ID, workflow.ActionApproveManager,
		workflow.Payload{EngineerID: &engineer.ID},
		workflow.Actor{ID: manager.ID, Role: manager.Role})
	if err != nil {
		t.Fatalf("approve_manager: %v", err)
	}
	if updated.Status != entity.StatusInExecution {
		t.Fatalf("status = %s, want IN_EXECUTION", updated.Status)
	}
	if updated.Type != entity.TypeEngineering {
		t.Errorf("type = %s, want ENGINEERING", updated.Type)
	}
	if updated.AssignedToID == nil || *updated.AssignedToID != engineer.ID {
		t.Errorf("assigned_to = %v, want %d", updated.AssignedToID, engineer.ID)
	}

	updated, err = svc.Request.ApplyTransition(ctx, req.ID, workflow.ActionFinishExecution,
		workflow.Payload{ExecutionDescription: "redesigned mount", PM04Order: "N/A"},
		workflow.Actor{ID: engineer.ID, Role: engineer.Role})
	if err != nil {
		t.Fatalf("finish_execution: %v", err)
	}
	if updated.Status != entity.StatusDone {
		t.Fatalf("status = %s, want DONE", updated.Status)
	}
}

func TestDuplicateApprovalFails(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := testutil.NewTestServices(t, db)
	ctx := context.Background()

	requester := testutil.SeedUser(t, db, "joao", entity.RoleRequester)
	prod := testutil.SeedUser(t, db, "ana", entity.RoleApproverProd)
	req := testutil.SeedRequest(t, db, requester.ID, entity.StatusOpen)

	actor := workflow.Actor{ID: prod.ID, Role: prod.Role}
	if _, err := svc.Request.ApplyTransition(ctx, req.ID, workflow.ActionApproveProduction, workflow.Payload{}, actor); err != nil {
		t.Fatalf("first approval: %v", err)
	}

	// The second identical call finds the record already moved and must
	// fail without writing anything.
	_, err := svc.Request.ApplyTransition(ctx, req.ID, workflow.ActionApproveProduction, workflow.Payload{}, actor)
	if !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("second approval: err = %v, want ErrInvalidTransition", err)
	}

	final, err := svc.Request.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if final.Status != entity.StatusWaitingProd {
		t.Errorf("status = %s, want WAITING_PROD", final.Status)
	}
	if len(final.History) != 1 {
		t.Errorf("history rows = %d, want 1", len(final.History))
	}
}

func TestConcurrentApprovalExactlyOneWins(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := testutil.NewTestServices(t, db)
	ctx := context.Background()

	requester := testutil.SeedUser(t, db, "joao", entity.RoleRequester)
	maint := testutil.SeedUser(t, db, "carlos", entity.RoleApproverMaint)
	executor := testutil.SeedUser(t, db, "pedro", entity.RoleExecutor)
	req := testutil.SeedRequest(t, db, requester.ID, entity.StatusWaitingMaint)

	payload := workflow.Payload{Type: entity.TypeTechnical, ExecutorID: &executor.ID}
	actor := workflow.Actor{ID: maint.ID, Role: maint.Role}

	// Both calls read the same WAITING_MAINT record; the status-guarded
	// update lets exactly one of them through.
	start := make(chan struct{})
	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = svc.Request.ApplyTransition(ctx, req.ID, workflow.ActionApproveMaintenance, payload, actor)
		}(i)
	}
	close(start)
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, workflow.ErrInvalidTransition):
			losses++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("wins = %d, losses = %d, want exactly one of each", wins, losses)
	}

	final, err := svc.Request.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if final.Status != entity.StatusInExecution {
		t.Errorf("status = %s, want IN_EXECUTION", final.Status)
	}
	if len(final.History) != 1 {
		t.Errorf("history rows = %d, want 1", len(final.History))
	}
}

func TestRequestHistory(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := testutil.NewTestServices(t, db)
	ctx := context.Background()

	requester := testutil.SeedUser(t, db, "joao", entity.RoleRequester)
	prod := testutil.SeedUser(t, db, "ana", entity.RoleApproverProd)
	req := testutil.SeedRequest(t, db, requester.ID, entity.StatusOpen)

	if _, err := svc.Request.ApplyTransition(ctx, req.ID, workflow.ActionApproveProduction,
		workflow.Payload{Comment: "line stopped"},
		workflow.Actor{ID: prod.ID, Role: prod.Role}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	rows, err := svc.Request.History(ctx, req.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Action != entity.HistoryApprovedProd || rows[0].Comment != "line stopped" {
		t.Errorf("row = %+v", rows[0])
	}
	if rows[0].Actor == nil || rows[0].Actor.ID != prod.ID {
		t.Errorf("actor not preloaded: %+v", rows[0].Actor)
	}

	if _, err := svc.Request.History(ctx, 9999); !errors.Is(err, workflow.ErrNotFound) {
		t.Fatalf("unknown id: err = %v, want ErrNotFound", err)
	}
}

func TestRejectionIsTerminal(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := testutil.NewTestServices(t, db)
	ctx := context.Background()

	requester := testutil.SeedUser(t, db, "joao", entity.RoleRequester)
	prod := testutil.SeedUser(t, db, "ana", entity.RoleApproverProd)
	req := testutil.SeedRequest(t, db, requester.ID, entity.StatusOpen)

	updated, err := svc.Request.ApplyTransition(ctx, req.ID, workflow.ActionRejectProduction,
		workflow.Payload{Comment: "not reproducible"},
		workflow.Actor{ID: prod.ID, Role: prod.Role})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if updated.Status != entity.StatusRejected {
		t.Fatalf("status = %s, want REJECTED", updated.Status)
	}

	_, err = svc.Request.ApplyTransition(ctx, req.ID, workflow.ActionApproveProduction, workflow.Payload{},
		workflow.Actor{ID: prod.ID, Role: prod.Role})
	if !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Fatalf("approve after reject: err = %v, want ErrInvalidTransition", err)
	}
}

func TestTransitionNotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := testutil.NewTestServices(t, db)
	prod := testutil.SeedUser(t, db, "ana", entity.RoleApproverProd)

	_, err := svc.Request.ApplyTransition(context.Background(), 9999, workflow.ActionApproveProduction,
		workflow.Payload{}, workflow.Actor{ID: prod.ID, Role: prod.Role})
	if !errors.Is(err, workflow.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAssigneeRoleChecked(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := testutil.NewTestServices(t, db)
	ctx := context.Background()

	requester := testutil.SeedUser(t, db, "joao", entity.RoleRequester)
	maint := testutil.SeedUser(t, db, "carlos", entity.RoleApproverMaint)
	req := testutil.SeedRequest(t, db, requester.ID, entity.StatusWaitingMaint)

	// Assigning execution to a non-executor is a payload problem, not a
	// permissions one.
	_, err := svc.Request.ApplyTransition(ctx, req.ID, workflow.ActionApproveMaintenance,
		workflow.Payload{Type: entity.TypeTechnical, ExecutorID: &requester.ID},
		workflow.Actor{ID: maint.ID, Role: maint.Role})
	if !workflow.IsValidation(err) {
		t.Fatalf("err = %v, want validation error on executor_id", err)
	}

	final, err := svc.Request.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if final.Status != entity.StatusWaitingMaint {
		t.Errorf("status = %s, record must be unchanged on failure", final.Status)
	}
}

func TestBoardAndCounts(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := testutil.NewTestServices(t, db)
	ctx := context.Background()

	requester := testutil.SeedUser(t, db, "joao", entity.RoleRequester)
	testutil.SeedRequest(t, db, requester.ID, entity.StatusOpen)
	testutil.SeedRequest(t, db, requester.ID, entity.StatusOpen)
	testutil.SeedRequest(t, db, requester.ID, entity.StatusInExecution)

	board, err := svc.Request.Board(ctx)
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	// Empty columns are present, not missing.
	if len(board) != len(entity.AllStatuses()) {
		t.Errorf("columns = %d, want %d", len(board), len(entity.AllStatuses()))
	}
	if len(board[entity.StatusOpen]) != 2 {
		t.Errorf("OPEN column = %d, want 2", len(board[entity.StatusOpen]))
	}
	if len(board[entity.StatusDone]) != 0 {
		t.Errorf("DONE column = %d, want 0", len(board[entity.StatusDone]))
	}

	counts, err := svc.Request.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[entity.StatusOpen] != 2 || counts[entity.StatusInExecution] != 1 || counts[entity.StatusRejected] != 0 {
		t.Errorf("counts = %v", counts)
	}
}

func testCreateInput() service.CreateRequestInput {
	return service.CreateRequestInput{
		Title:              "Hydraulic leak on press 1",
		ProblemDescription: "Oil pooling under the main cylinder",
		Process:            "Stamping",
		Equipment:          "Press 1",
		GutGravity:         4,
		GutUrgency:         3,
		GutTendency:        5,
	}
}
