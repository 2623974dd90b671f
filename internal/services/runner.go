package services

import (
	"fmt"

	"github.com/nuxeo/mkto-pd-sync-app/internal/sync"
)

// TaskRunner routes a task name to the matching synchronization. Every
// trigger surface (HTTP, queue worker, broker consumer) goes through
// it so they all expose the same task names.
type TaskRunner struct {
	service *sync.Service
}

func NewTaskRunner(service *sync.Service) *TaskRunner {
	return &TaskRunner{service: service}
}

func (r *TaskRunner) Run(task string, entityID any) (sync.Result, error) {
	switch task {
	case sync.TaskLeadToPerson:
		return r.service.SyncLeadToPerson(entityID)
	case sync.TaskPersonToLead:
		return r.service.SyncPersonToLead(entityID)
	case sync.TaskCompanyToOrganization:
		return r.service.SyncCompanyToOrganization(entityID)
	case sync.TaskOrganizationToCompany:
		return r.service.SyncOrganizationToCompany(entityID)
	case sync.TaskDealToOpportunity:
		return r.service.SyncDealToOpportunity(entityID)
	case sync.TaskLeadToActivity:
		return r.service.SyncLeadToActivity(entityID)
	case sync.TaskDeletePerson:
		return r.service.DeletePerson(entityID)
	case sync.TaskFlagLeadForDeletion:
		return r.service.FlagLeadForDeletion(entityID)
	default:
		return sync.Result{}, fmt.Errorf("unknown task: %s", task)
	}
}

// Tasks lists every runnable task name.
func (r *TaskRunner) Tasks() []string {
	return []string{
		sync.TaskLeadToPerson,
		sync.TaskPersonToLead,
		sync.TaskCompanyToOrganization,
		sync.TaskOrganizationToCompany,
		sync.TaskDealToOpportunity,
		sync.TaskLeadToActivity,
		sync.TaskDeletePerson,
		sync.TaskFlagLeadForDeletion,
	}
}
