package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// SavedFile records one invoice PDF written to disk.
type SavedFile struct {
	Contract string `json:"contract"`
	Invoice  string `json:"invoice"`
	Period   string `json:"period"`
	Path     string `json:"path"`
	SavedAt  string `json:"savedAt"`
}

type State struct {
	LastRun   string      `json:"lastRun"`
	LastRunID string      `json:"lastRunId"`
	Files     []SavedFile `json:"files"`
}

type Manager struct {
	Path  string
	State State
}

var DefaultState = State{
	LastRun: "",
	Files:   []SavedFile{},
}

func NewManager(path string) *Manager {
	return &Manager{
		Path:  path,
		State: DefaultState,
	}
}

func (m *Manager) Load() error {
	if _, err := os.Stat(m.Path); os.IsNotExist(err) {
		m.State = DefaultState
		return nil
	}

	data, err := os.ReadFile(m.Path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, &m.State); err != nil {
		return err
	}
	return nil
}

func (m *Manager) Save() error {
	data, err := json.MarshalIndent(m.State, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.Path), 0755); err != nil {
		return err
	}
	return os.WriteFile(m.Path, data, 0644)
}

func (m *Manager) StartRun(runID string, now time.Time) {
	m.State.LastRun = now.UTC().Format(time.RFC3339)
	m.State.LastRunID = runID
}

// Record adds a saved file, replacing an earlier entry for the same path
// since a rerun overwrites the file.
func (m *Manager) Record(f SavedFile) {
	if f.SavedAt == "" {
		f.SavedAt = time.Now().UTC().Format(time.RFC3339)
	}
	for i, existing := range m.State.Files {
		if existing.Path == f.Path {
			m.State.Files[i] = f
			return
		}
	}
	m.State.Files = append(m.State.Files, f)
}

func (m *Manager) FilesForContract(contract string) []SavedFile {
	var files []SavedFile
	for _, f := range m.State.Files {
		if f.Contract == contract {
			files = append(files, f)
		}
	}
	return files
}
