// Package workflow is the request state machine: the canonical status set,
// the role-gated transitions between statuses, and the mutation each
// transition produces. It is pure domain logic with no persistence; the
// service layer applies the returned Outcome atomically.
package workflow

import (
	"github.com/hendelsantos/Demandas-Producao-Manutencao/internal/maintenance/entity"
)

// Action identifies one workflow transition. Action names are part of the
// wire contract with the frontend.
type Action string

const (
	ActionApproveProduction   Action = "approve_production"
	ActionRejectProduction    Action = "reject_production"
	ActionScheduleMaintenance Action = "schedule_maintenance"
	ActionApproveMaintenance  Action = "approve_maintenance"
	ActionRejectMaintenance   Action = "reject_maintenance"
	ActionApproveManager      Action = "approve_manager"
	ActionFinishExecution     Action = "finish_execution"
)

// Payload carries the action-specific fields of a transition request.
// Which fields are required depends on the action; Decide validates them.
type Payload struct {
	Comment              string `json:"comment"`
	Type                 string `json:"type"`
	ExecutorID           *uint  `json:"executor_id"`
	EngineerID           *uint  `json:"engineer_id"`
	ExecutionDescription string `json:"execution_description"`
	PM04Order            string `json:"pm04_order"`
	Observation          string `json:"observation"`
	TechnicianName       string `json:"technician_name"`
}

// Actor is the acting principal. The engine never reads ambient session
// state; identity and role are always passed in explicitly.
type Actor struct {
	ID   uint
	Role string
}

// Outcome is the mutation a valid transition produces. The service layer
// applies it with a status-guarded update so concurrent duplicates cannot
// both succeed.
type Outcome struct {
	ToStatus      string
	SetType       string // "" = leave unchanged
	AssignTo      *uint
	Finish        bool // set finished_at and the closeout fields
	HistoryAction string
	NotifyRole    string // role queue to notify next, "" = notify assignee or nobody
}

// transitionSpec gates one action: which statuses it may start from and
// which roles may invoke it.
type transitionSpec struct {
	sources []string
	roles   map[string]bool
}

var transitions = map[Action]transitionSpec{
	ActionApproveProduction: {
		sources: []string{entity.StatusOpen},
		roles:   map[string]bool{entity.RoleApproverProd: true},
	},
	ActionRejectProduction: {
		sources: []string{entity.StatusOpen},
		roles:   map[string]bool{entity.RoleApproverProd: true},
	},
	ActionScheduleMaintenance: {
		sources: []string{entity.StatusWaitingProd},
		roles:   map[string]bool{entity.RoleApproverMaint: true},
	},
	ActionApproveMaintenance: {
		sources: []string{entity.StatusWaitingMaint},
		roles:   map[string]bool{entity.RoleApproverMaint: true},
	},
	// One action for both rejection paths; Decide narrows the role by
	// source status so a maintenance approver cannot reject a request
	// already sitting in the manager's queue.
	ActionRejectMaintenance: {
		sources: []string{entity.StatusWaitingMaint, entity.StatusWaitingManager},
		roles: map[string]bool{
			entity.RoleApproverMaint: true,
			entity.RoleManagerMaint:  true,
		},
	},
	ActionApproveManager: {
		sources: []string{entity.StatusWaitingManager},
		roles:   map[string]bool{entity.RoleManagerMaint: true},
	},
	ActionFinishExecution: {
		sources: []string{entity.StatusInExecution},
		roles: map[string]bool{
			entity.RoleExecutor:     true,
			entity.RoleEngineerMech: true,
			entity.RoleEngineerElec: true,
		},
	},
}

// stageOrder maps each status to its step index on the progress bar.
// REJECTED is off the bar.
var stageOrder = map[string]int{
	entity.StatusOpen:           0,
	entity.StatusWaitingProd:    1,
	entity.StatusWaitingMaint:   2,
	entity.StatusWaitingManager: 3,
	entity.StatusInExecution:    4,
	entity.StatusDone:           5,
	entity.StatusRejected:       -1,
}

// Actions returns every known action name.
func Actions() []Action {
	return []Action{
		ActionApproveProduction,
		ActionRejectProduction,
		ActionScheduleMaintenance,
		ActionApproveMaintenance,
		ActionRejectMaintenance,
		ActionApproveManager,
		ActionFinishExecution,
	}
}

// KnownAction reports whether a is a defined workflow action.
func KnownAction(a Action) bool {
	_, ok := transitions[a]
	return ok
}

// SourceStates returns the statuses an action may start from.
func SourceStates(a Action) []string {
	spec, ok := transitions[a]
	if !ok {
		return nil
	}
	out := make([]string, len(spec.sources))
	copy(out, spec.sources)
	return out
}

// Terminal reports whether no action transitions out of status.
func Terminal(status string) bool {
	return status == entity.StatusDone || status == entity.StatusRejected
}

// Stage returns the progress-bar step index for a status, or -1 for
// REJECTED and unknown statuses. Presentation derives step rendering from
// this instead of re-encoding the status order.
func Stage(status string) int {
	if idx, ok := stageOrder[status]; ok {
		return idx
	}
	return -1
}

// Authorize checks the capability gate only: may this role ever invoke
// this action. Status preconditions are checked separately by Decide so
// the caller can tell "you may not do this" from "not the right time".
func Authorize(role string, action Action) error {
	spec, ok := transitions[action]
	if !ok {
		return NewValidationError("action")
	}
	if !spec.roles[role] {
		return ErrForbidden
	}
	return nil
}

// Decide validates a transition request against the record and returns the
// mutation to apply. The order of checks is fixed: capability, source
// status, payload. It never mutates req.
func Decide(req *entity.MaintenanceRequest, action Action, p Payload, actor Actor) (*Outcome, error) {
	spec, ok := transitions[action]
	if !ok {
		return nil, NewValidationError("action")
	}

	if err := Authorize(actor.Role, action); err != nil {
		return nil, err
	}

	sourceOK := false
	for _, s := range spec.sources {
		if req.Status == s {
			sourceOK = true
			break
		}
	}
	if !sourceOK {
		return nil, ErrInvalidTransition
	}

	switch action {
	case ActionApproveProduction:
		return &Outcome{
			ToStatus:      entity.StatusWaitingProd,
			HistoryAction: entity.HistoryApprovedProd,
			NotifyRole:    entity.RoleApproverMaint,
		}, nil

	case ActionRejectProduction:
		return &Outcome{
			ToStatus:      entity.StatusRejected,
			HistoryAction: entity.HistoryRejectedProd,
		}, nil

	case ActionScheduleMaintenance:
		return &Outcome{
			ToStatus:      entity.StatusWaitingMaint,
			HistoryAction: entity.HistoryScheduledMaint,
		}, nil

	case ActionApproveMaintenance:
		switch p.Type {
		case entity.TypeTechnical:
			if p.ExecutorID == nil {
				return nil, NewValidationError("executor_id")
			}
			return &Outcome{
				ToStatus:      entity.StatusInExecution,
				SetType:       entity.TypeTechnical,
				AssignTo:      p.ExecutorID,
				HistoryAction: entity.HistoryApprovedMaintTech,
			}, nil
		case entity.TypeEngineering:
			return &Outcome{
				ToStatus:      entity.StatusWaitingManager,
				SetType:       entity.TypeEngineering,
				HistoryAction: entity.HistoryApprovedMaintEng,
				NotifyRole:    entity.RoleManagerMaint,
			}, nil
		default:
			return nil, NewValidationError("type")
		}

	case ActionRejectMaintenance:
		// Role narrowed by the queue the request currently sits in.
		switch req.Status {
		case entity.StatusWaitingMaint:
			if actor.Role != entity.RoleApproverMaint {
				return nil, ErrForbidden
			}
		case entity.StatusWaitingManager:
			if actor.Role != entity.RoleManagerMaint {
				return nil, ErrForbidden
			}
		}
		return &Outcome{
			ToStatus:      entity.StatusRejected,
			HistoryAction: entity.HistoryRejectedMaint,
		}, nil

	case ActionApproveManager:
		if p.EngineerID == nil {
			return nil, NewValidationError("engineer_id")
		}
		return &Outcome{
			ToStatus:      entity.StatusInExecution,
			SetType:       "",
			AssignTo:      p.EngineerID,
			HistoryAction: entity.HistoryApprovedManager,
		}, nil

	case ActionFinishExecution:
		if req.AssignedToID == nil || *req.AssignedToID != actor.ID {
			return nil, ErrForbidden
		}
		var missing []string
		if p.ExecutionDescription == "" {
			missing = append(missing, "execution_description")
		}
		// PM04 order is never left empty; operators without an order
		// number submit the literal "N/A".
		if p.PM04Order == "" {
			missing = append(missing, "pm04_order")
		}
		if len(missing) > 0 {
			return nil, NewValidationError(missing...)
		}
		return &Outcome{
			ToStatus:      entity.StatusDone,
			Finish:        true,
			HistoryAction: entity.HistoryFinished,
		}, nil
	}

	return nil, NewValidationError("action")
}
