package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora/planora/internal/core/plan"
	"github.com/planora/planora/internal/core/project"
)

func sampleDocument() Document {
	return Document{
		Version:    Version,
		ExportedAt: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		Projects: []ProjectExport{{
			Project: project.Project{ID: "p1", Name: "web"},
			Members: []project.Member{
				{ID: "m1", ProjectID: "p1", Name: "ana", Role: project.RoleOwner},
			},
			Tasks: []plan.Task{{
				ID:        "t1",
				ProjectID: "p1",
				Title:     "release prep",
				DueDate:   time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC),
				Todos: []plan.Todo{
					{ID: "a", Text: "build", StartDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), EstimatedHours: 4},
				},
			}},
		}},
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	raw, err := Encode(sampleDocument())
	require.NoError(t, err)

	doc, err := Decode(raw)
	require.NoError(t, err)

	require.Len(t, doc.Projects, 1)
	assert.Equal(t, "web", doc.Projects[0].Project.Name)
	require.Len(t, doc.Projects[0].Tasks, 1)
	assert.Equal(t, 4.0, doc.Projects[0].Tasks[0].Todos[0].EstimatedHours)
}

func TestDecode_Rejections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "not json",
			raw:  "{",
			want: "parse export document",
		},
		{
			name: "missing version",
			raw:  `{"exported_at":"2026-03-02T08:00:00Z","projects":[]}`,
			want: "schema validation",
		},
		{
			name: "project without name",
			raw:  `{"version":1,"exported_at":"2026-03-02T08:00:00Z","projects":[{"project":{"id":"p1"}}]}`,
			want: "schema validation",
		},
		{
			name: "todo with zero hours",
			raw:  `{"version":1,"exported_at":"2026-03-02T08:00:00Z","projects":[{"project":{"id":"p1","name":"web"},"tasks":[{"id":"t1","project_id":"p1","title":"x","due_date":"2026-03-06T00:00:00Z","todos":[{"id":"a","text":"b","estimated_hours":0}]}]}]}`,
			want: "schema validation",
		},
		{
			name: "future version",
			raw:  `{"version":2,"exported_at":"2026-03-02T08:00:00Z","projects":[]}`,
			want: "unsupported export version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
