package sync

import (
	"fmt"
	"log"

	"github.com/nuxeo/mkto-pd-sync-app/internal/crm"
	"github.com/nuxeo/mkto-pd-sync-app/internal/mapping"
)

// Unassigned-owner user id in Pipedrive; syncs fall back to it instead
// of failing when an owner cannot be resolved.
const defaultOwnerID = 208823

// Journal records completed task invocations. A nil journal disables
// recording.
type Journal interface {
	Record(task string, sourceID any, status string, targetID any)
}

// Options tunes a Service beyond its two clients.
type Options struct {
	// PipelineName restricts deal synchronization to one pipeline.
	PipelineName string
	// DefaultOwnerID overrides the unassigned-owner user id.
	DefaultOwnerID int
	// Journal receives one entry per task invocation, may be nil.
	Journal Journal
}

// Service runs the synchronization tasks. It owns the adapter registry
// (binding the related-entity adapters to itself) and the two remote
// clients, passed in explicitly; nothing is cached between
// invocations.
type Service struct {
	marketo      crm.Client
	pipedrive    crm.Client
	registry     *mapping.Registry
	pipelineName string
	ownerID      int
	journal      Journal
}

// NewService wires a Service and fail-fast validates every mapping
// table against the adapter registry.
func NewService(marketoClient, pipedriveClient crm.Client, opts Options) (*Service, error) {
	s := &Service{
		marketo:      marketoClient,
		pipedrive:    pipedriveClient,
		pipelineName: opts.PipelineName,
		ownerID:      opts.DefaultOwnerID,
		journal:      opts.Journal,
	}
	if s.ownerID == 0 {
		s.ownerID = defaultOwnerID
	}

	s.registry = mapping.NewRegistry(s)
	if err := mapping.ValidateAll(s.registry); err != nil {
		return nil, err
	}
	return s, nil
}

// Registry exposes the bound adapter registry.
func (s *Service) Registry() *mapping.Registry {
	return s.registry
}

func (s *Service) record(task string, sourceID any, res Result) {
	if s.journal == nil {
		return
	}
	status := res.Status
	if res.Error != "" {
		status = "error"
	}
	s.journal.Record(task, sourceID, status, res.ID)
}

// loadEntity fetches one entity. The returned entity is fresh and
// empty when the lookup matched nothing.
func loadEntity(client crm.Client, schema crm.Schema, id any, idField string) (*crm.Entity, bool, error) {
	entity := crm.NewEntity(schema)
	if crm.IsEmpty(id) {
		return entity, false, nil
	}

	record, err := client.GetData(schema.Entity, id, idField)
	if err != nil {
		return entity, false, fmt.Errorf("failed to load %s with %s=%v: %w", schema.Entity, idField, id, err)
	}
	if record == nil {
		return entity, false, nil
	}
	entity.Init(record)
	return entity, true, nil
}

// persist writes an entity and re-assigns the returned identity fields
// onto it. A write that comes back without an identity is a hard
// error; retrying belongs to the task queue, not this layer.
func persist(client crm.Client, entity *crm.Entity) error {
	record, err := client.PutData(entity.Type(), entity.Payload(), entity.ID())
	if err != nil {
		return fmt.Errorf("failed to persist %s: %w", entity.Type(), err)
	}
	if record == nil {
		return fmt.Errorf("persist of %s returned no data", entity.Type())
	}
	entity.Init(record)
	if entity.ID() == nil {
		return fmt.Errorf("persist of %s returned no identity", entity.Type())
	}
	return nil
}

func logNothingToDo(system string, entity *crm.Entity) {
	log.Printf("[sync] Nothing to do in %s for %s", system, entity)
}
