package stub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Object is one record as the API serves it
type Object = map[string]any

// Dataset is the YAML file layout:
//
//	resources:
//	  books:
//	    - title: Dune
//	      year: 1965
type Dataset struct {
	Resources map[string][]Object `yaml:"resources"`
}

func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}
	return ParseDataset(data)
}

func ParseDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset YAML: %w", err)
	}
	if len(ds.Resources) == 0 {
		return nil, fmt.Errorf("dataset has no resources")
	}
	return &ds, nil
}

// Store keeps resources in memory
type Store struct {
	lock      sync.RWMutex
	resources map[string][]Object
}

func NewStore() *Store {
	return &Store{
		resources: make(map[string][]Object),
	}
}

// NewStoreFromDataset loads every resource of ds into a new store
func NewStoreFromDataset(ds *Dataset) (*Store, error) {
	s := NewStore()
	for name, objects := range ds.Resources {
		if err := s.Put(name, objects...); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Put appends objects to a resource, creating it when needed.
// Values are normalized to their JSON form and objects without an id get a UUID.
func (s *Store) Put(resource string, objects ...Object) error {
	normalized := make([]Object, 0, len(objects))
	for i, obj := range objects {
		n, err := normalize(obj)
		if err != nil {
			return fmt.Errorf("resource %q object %d: %w", resource, i, err)
		}
		if _, ok := n["id"]; !ok {
			n["id"] = uuid.NewString()
		}
		normalized = append(normalized, n)
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	s.resources[resource] = append(s.resources[resource], normalized...)
	slog.Debug("Stored objects", "resource", resource, "count", len(normalized))
	return nil
}

// List returns a copy of a resource's objects and whether it exists
func (s *Store) List(resource string) ([]Object, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	objects, ok := s.resources[resource]
	if !ok {
		return nil, false
	}
	return append([]Object(nil), objects...), true
}

// Resources lists resource names in sorted order
func (s *Store) Resources() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	names := make([]string, 0, len(s.resources))
	for name := range s.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Healthy reports whether anything is loaded
func (s *Store) Healthy(_ context.Context) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.resources) > 0
}

// normalize round trips obj through JSON so values compare the way a
// client sends them: float64 numbers, strings for timestamps
func normalize(obj Object) (Object, error) {
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var out Object
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = Object{}
	}
	return out, nil
}
