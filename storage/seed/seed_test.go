package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	data, err := Default()
	require.NoError(t, err)

	assert.Len(t, data.Classes, 3)
	assert.Len(t, data.Students, 3)
	assert.Len(t, data.Evaluations, 3)
	assert.Equal(t, Class{Name: "Turma A", Capacity: 30}, data.Classes[0])
	assert.Equal(t, Student{Name: "João Pereira", Email: "joao@escola.com", Class: "Turma B", Status: "inactive"}, data.Students[1])
	assert.Equal(t, "2025-11-15", data.Evaluations[0].Date)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "empty", raw: ""},
		{name: "invalid yaml", raw: "classes: [", wantErr: true},
		{name: "class without capacity", raw: "classes:\n  - name: A\n", wantErr: true},
		{name: "duplicate class", raw: "classes:\n  - {name: A, capacity: 1}\n  - {name: A, capacity: 2}\n", wantErr: true},
		{
			name:    "student in unknown class",
			raw:     "classes:\n  - {name: A, capacity: 1}\nstudents:\n  - {name: S, email: s@x.io, class: B, status: active}\n",
			wantErr: true,
		},
		{
			name:    "invalid status",
			raw:     "classes:\n  - {name: A, capacity: 1}\nstudents:\n  - {name: S, email: s@x.io, class: A, status: Ativo}\n",
			wantErr: true,
		},
		{name: "invalid date", raw: "upcoming_evaluations:\n  - {class: A, date: 15/11/2025, description: Exam}\n", wantErr: true},
		{name: "user without email", raw: "users:\n  - {name: U}\n", wantErr: true},
		{
			name: "valid",
			raw:  "classes:\n  - {name: A, capacity: 1}\nstudents:\n  - {name: S, email: s@x.io, class: A, status: active}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	data, err := Load("")
	require.NoError(t, err)
	assert.Len(t, data.Classes, 3)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("classes:\n  - {name: Solo, capacity: 5}\n"), 0o600))
	data, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Class{{Name: "Solo", Capacity: 5}}, data.Classes)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
