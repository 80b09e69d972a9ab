package registry

import (
	"github.com/valyala/fastjson"
	"go.trai.ch/fans/internal/core/domain"
	"go.trai.ch/zerr"
)

var parserPool fastjson.ParserPool

// decodeManifest decodes a registry document. The "versions" object is
// visited in document order, which the registry keeps in publication order.
func decodeManifest(name string, body []byte) (*domain.Manifest, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	doc, err := p.ParseBytes(body)
	if err != nil {
		return nil, parseError(name, err.Error())
	}

	versions := doc.GetObject("versions")
	if versions == nil {
		return nil, parseError(name, `missing "versions" object`)
	}

	manifest := &domain.Manifest{
		Name:     name,
		Versions: make(map[string]domain.VersionManifest, versions.Len()),
		Order:    make([]string, 0, versions.Len()),
	}

	var visitErr error
	versions.Visit(func(key []byte, v *fastjson.Value) {
		if visitErr != nil {
			return
		}
		version := string(key)
		record, err := decodeVersion(v)
		if err != nil {
			visitErr = zerr.With(err, "version", version)
			return
		}
		if _, seen := manifest.Versions[version]; !seen {
			manifest.Order = append(manifest.Order, version)
		}
		manifest.Versions[version] = record
	})
	if visitErr != nil {
		return nil, zerr.With(visitErr, "package", name)
	}

	return manifest, nil
}

func decodeVersion(v *fastjson.Value) (domain.VersionManifest, error) {
	if v.Type() != fastjson.TypeObject {
		return domain.VersionManifest{}, zerr.Wrap(domain.ErrRegistryParseFailed, "version entry is not an object")
	}

	tarball := string(v.GetStringBytes("dist", "tarball"))
	if tarball == "" {
		return domain.VersionManifest{}, zerr.Wrap(domain.ErrRegistryParseFailed, "missing dist.tarball")
	}

	record := domain.VersionManifest{
		Dist: domain.Dist{
			Tarball: tarball,
			Shasum:  string(v.GetStringBytes("dist", "shasum")),
		},
	}

	if deps := v.GetObject("dependencies"); deps != nil && deps.Len() > 0 {
		record.Dependencies = make(map[string]string, deps.Len())
		deps.Visit(func(key []byte, dv *fastjson.Value) {
			// Non-string ranges are treated as unconstrained.
			record.Dependencies[string(key)] = string(dv.GetStringBytes())
		})
	}
	return record, nil
}

func parseError(name, reason string) error {
	return zerr.With(zerr.Wrap(domain.ErrRegistryParseFailed, reason), "package", name)
}
