package services

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"kipped/internal/database"
)

type exportDocument struct {
	ExportedAt time.Time       `yaml:"exported_at"`
	Notes      []database.Note `yaml:"notes"`
	Todos      []database.Todo `yaml:"todos"`
}

type ExportService struct {
	notes *NoteService
	todos *TodoService
	now   func() time.Time
}

func NewExportService(notes *NoteService, todos *TodoService, now func() time.Time) *ExportService {
	return &ExportService{notes: notes, todos: todos, now: now}
}

// ExportYAML renders every note and to-do as a single YAML document.
func (es *ExportService) ExportYAML() ([]byte, error) {
	doc := exportDocument{
		ExportedAt: es.now(),
		Notes:      es.notes.Notes(),
		Todos:      es.todos.All(),
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return out, nil
}
