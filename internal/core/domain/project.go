package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// Project is the part of package.json the package manager reads and writes.
// A nil map means the field is absent from the file.
type Project struct {
	Name            string
	Dependencies    map[string]string
	DevDependencies map[string]string
}

// AddDependency records name with constraint, creating the map if needed.
func (p *Project) AddDependency(name, constraint string, dev bool) {
	target := &p.Dependencies
	if dev {
		target = &p.DevDependencies
	}
	if *target == nil {
		*target = make(map[string]string)
	}
	(*target)[name] = constraint
}

// ParsePackageSpec splits a command line argument of the form name,
// name@range or @scope/name@range. "latest" is treated as no range.
func ParsePackageSpec(spec string) (name, constraint string, err error) {
	spec = strings.TrimSpace(spec)

	at := strings.LastIndex(spec, "@")
	if at > 0 {
		name, constraint = spec[:at], spec[at+1:]
	} else {
		name = spec
	}

	if name == "" || name == "@" || (strings.HasPrefix(name, "@") && !strings.Contains(name, "/")) {
		return "", "", zerr.With(zerr.Wrap(ErrInvalidPackageSpec, "failed to parse package"), "spec", spec)
	}
	if constraint == "latest" {
		constraint = ""
	}
	return name, constraint, nil
}
