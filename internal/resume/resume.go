package resume

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// State records the candidates a scan has finished so an interrupted scan
// can skip them next time. Candidates are keyed by their request URL.
type State struct {
	BaseURL   string   `json:"base_url"`
	Completed []string `json:"completed"`
	Total     int      `json:"total"`

	mu   sync.Mutex
	path string
	done map[string]struct{}
}

// New creates an empty state that will be saved to path.
func New(path, baseURL string, total int) *State {
	return &State{
		BaseURL: baseURL,
		Total:   total,
		path:    path,
		done:    make(map[string]struct{}),
	}
}

// Load reads an existing state from disk. It returns nil, nil if the file
// does not exist.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading resume file: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing resume file: %w", err)
	}

	s.path = path
	s.done = make(map[string]struct{}, len(s.Completed))
	for _, k := range s.Completed {
		s.done[k] = struct{}{}
	}
	return &s, nil
}

// Open loads the state at path if it belongs to a scan of baseURL, and
// starts a fresh one otherwise.
func Open(path, baseURL string, total int) (*State, error) {
	existing, err := Load(path)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.BaseURL == baseURL {
		return existing, nil
	}
	return New(path, baseURL, total), nil
}

// IsCompleted reports whether key was finished by an earlier run.
func (s *State) IsCompleted(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.done[key]
	return ok
}

// MarkCompleted records key as done.
func (s *State) MarkCompleted(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.done[key]; !ok {
		s.done[key] = struct{}{}
		s.Completed = append(s.Completed, key)
	}
}

// Len returns the number of completed keys.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.done)
}

// Save writes the current state to disk.
func (s *State) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("serializing resume state: %w", err)
	}
	return os.WriteFile(s.path, data, 0644)
}

// Remove deletes the resume file. Called once a scan completes.
func (s *State) Remove() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
