package controllers

import (
	"net/http"

	"github.com/nuxeo/mkto-pd-sync-app/internal/mapping"
)

// MappingsHandler exposes the static mapping tables read-only, for
// checking what a deployment synchronizes without reading the source.
type MappingsHandler struct{}

func NewMappingsHandler() *MappingsHandler {
	return &MappingsHandler{}
}

type mappingEntryView struct {
	TargetField string   `json:"target_field"`
	Fields      []string `json:"fields,omitempty"`
	Mode        string   `json:"mode,omitempty"`
	Pre         string   `json:"pre_adapter,omitempty"`
	Post        string   `json:"post_adapter,omitempty"`
	Transform   string   `json:"transformer,omitempty"`
}

type mappingTableView struct {
	Name    string             `json:"name"`
	Entries []mappingEntryView `json:"entries"`
}

func (h *MappingsHandler) HandleListMappings(w http.ResponseWriter, r *http.Request) {
	tables := mapping.All()

	views := make([]mappingTableView, 0, len(tables))
	for _, table := range tables {
		view := mappingTableView{Name: table.Name}
		for _, entry := range table.Entries {
			view.Entries = append(view.Entries, mappingEntryView{
				TargetField: entry.TargetField,
				Fields:      entry.Rule.Fields,
				Mode:        string(entry.Rule.Mode),
				Pre:         entry.Rule.Pre,
				Post:        entry.Rule.Post,
				Transform:   entry.Rule.Transform,
			})
		}
		views = append(views, view)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tables": views,
		"count":  len(views),
	})
}
