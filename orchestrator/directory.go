package orchestrator

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/chainfund/donation-workers/entities"
)

// ProjectDirectory resolves platform project ids to their on-chain
// identities.
type ProjectDirectory interface {
	Resolve(projectID string) (entities.Project, error)
}

// StaticDirectory is a map-backed directory, loadable from a JSON file.
type StaticDirectory struct {
	mu       sync.RWMutex
	projects map[string]entities.Project
}

func NewStaticDirectory(projects ...entities.Project) *StaticDirectory {
	d := &StaticDirectory{projects: map[string]entities.Project{}}
	for _, p := range projects {
		d.projects[p.ID] = p
	}
	return d
}

// LoadDirectory reads a JSON array of projects from disk.
func LoadDirectory(path string) (*StaticDirectory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var projects []entities.Project
	if err := json.Unmarshal(raw, &projects); err != nil {
		return nil, err
	}
	return NewStaticDirectory(projects...), nil
}

func (d *StaticDirectory) Resolve(projectID string) (entities.Project, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.projects[projectID]
	if !ok {
		return entities.Project{}, entities.ErrProjectNotFound
	}
	return p, nil
}

func (d *StaticDirectory) Add(p entities.Project) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.projects[p.ID] = p
}
