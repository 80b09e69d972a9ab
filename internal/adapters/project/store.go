// Package project reads and rewrites package.json.
package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/valyala/fastjson"
	"go.trai.ch/fans/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.ProjectStore.
type Store struct {
	parsers fastjson.ParserPool
}

// NewStore creates a new project Store.
func NewStore() *Store {
	return &Store{}
}

// DiscoverRoot returns the nearest directory at or above cwd that holds a
// package.json.
func (s *Store) DiscoverRoot(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.Wrap(domain.ErrProjectNotFound, err.Error())
	}

	for {
		candidate := filepath.Join(currentDir, domain.ProjectFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return currentDir, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", zerr.With(zerr.Wrap(domain.ErrProjectReadFailed, err.Error()), "path", candidate)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", zerr.With(zerr.Wrap(domain.ErrProjectNotFound, "no package.json found"), "cwd", cwd)
		}
		currentDir = parentDir
	}
}

// Load reads package.json in root.
func (s *Store) Load(root string) (*domain.Project, error) {
	path := filepath.Join(root, domain.ProjectFileName)
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	p := s.parsers.Get()
	defer s.parsers.Put(p)

	doc, err := p.ParseBytes(data)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrProjectParseFailed, err.Error()), "path", path)
	}
	if doc.Type() != fastjson.TypeObject {
		return nil, zerr.With(zerr.Wrap(domain.ErrProjectParseFailed, "top level value is not an object"), "path", path)
	}

	return &domain.Project{
		Name:            string(doc.GetStringBytes("name")),
		Dependencies:    dependencyMap(doc.GetObject("dependencies")),
		DevDependencies: dependencyMap(doc.GetObject("devDependencies")),
	}, nil
}

// Save rewrites the dependency maps of package.json in root. Other fields
// keep their value and position. Dependency maps are written with sorted keys.
func (s *Store) Save(root string, project *domain.Project) error {
	path := filepath.Join(root, domain.ProjectFileName)
	data, err := readFile(path)
	if err != nil {
		return err
	}

	p := s.parsers.Get()
	defer s.parsers.Put(p)

	doc, err := p.ParseBytes(data)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrProjectParseFailed, err.Error()), "path", path)
	}
	if doc.Type() != fastjson.TypeObject {
		return zerr.With(zerr.Wrap(domain.ErrProjectParseFailed, "top level value is not an object"), "path", path)
	}

	var arena fastjson.Arena
	if project.Dependencies != nil {
		doc.Set("dependencies", objectOf(&arena, project.Dependencies))
	}
	if project.DevDependencies != nil {
		doc.Set("devDependencies", objectOf(&arena, project.DevDependencies))
	}

	var out bytes.Buffer
	if err := json.Indent(&out, doc.MarshalTo(nil), "", "  "); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrProjectWriteFailed, err.Error()), "path", path)
	}
	out.WriteByte('\n')

	//nolint:gosec // Path is derived from the discovered project root
	if err := os.WriteFile(path, out.Bytes(), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrProjectWriteFailed, err.Error()), "path", path)
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	//nolint:gosec // Path is derived from the discovered project root
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrProjectNotFound, err.Error()), "path", path)
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrProjectReadFailed, err.Error()), "path", path)
	}
	return data, nil
}

func dependencyMap(obj *fastjson.Object) map[string]string {
	if obj == nil {
		return nil
	}
	deps := make(map[string]string, obj.Len())
	obj.Visit(func(key []byte, v *fastjson.Value) {
		deps[string(key)] = string(v.GetStringBytes())
	})
	return deps
}

func objectOf(a *fastjson.Arena, deps map[string]string) *fastjson.Value {
	obj := a.NewObject()
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		obj.Set(name, a.NewString(deps[name]))
	}
	return obj
}
