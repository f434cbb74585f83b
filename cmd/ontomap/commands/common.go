// Package commands implements the ontomap subcommands.
package commands

import (
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/geoknoesis/ontomap/config"
	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/namespace"
	"github.com/geoknoesis/ontomap/ontology"
	"github.com/geoknoesis/ontomap/rdf"
)

var current = config.Default()

// UseConfig sets the configuration the commands read their defaults from.
func UseConfig(cfg *config.Config) {
	if cfg != nil {
		current = cfg
	}
}

// outputFormat resolves --to, falling back to serialize.format.
func outputFormat(flag string) (rdf.Format, error) {
	if flag == "" {
		return current.OutputFormat(), nil
	}
	return rdf.LookupFormat(flag)
}

// openInput opens a file, or stdin for "-".
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return f, nil
}

// expandType accepts an absolute IRI or a compact IRI with a catalog prefix.
func expandType(value string) (string, error) {
	if namespace.IsAbsolute(value) {
		return value, nil
	}
	prefix, local, ok := namespace.SplitCompact(value)
	if !ok {
		return "", errors.Wrapf(errors.ErrInvalidArgument, "type %q is neither absolute nor compact", value)
	}
	iri, known := namespace.Lookup(prefix)
	if !known {
		return "", errors.WithHint(
			errors.Wrapf(errors.ErrNotFound, "prefix %q", prefix),
			"add it under namespaces in the configuration file")
	}
	return iri + local, nil
}

// classFromSpecs registers the classes of a YAML file in a fresh registry
// and returns the one named name.
func classFromSpecs(path, name string) (*ontology.Class, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	reg := ontology.NewRegistry()
	if _, err := reg.LoadClassSpecs(f); err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	class, ok := reg.Lookup(name)
	if !ok {
		names := make([]string, 0)
		for _, c := range reg.Classes() {
			names = append(names, c.Name())
		}
		return nil, errors.WithHintf(
			errors.Wrapf(errors.ErrNotFound, "class %q", name),
			"classes in %s: %s", path, strings.Join(names, ", "))
	}
	return class, nil
}

// writeData prints v as indented JSON or YAML.
func writeData(w io.Writer, v any, format string) error {
	switch strings.ToLower(format) {
	case "", "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal JSON")
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "failed to marshal YAML")
		}
		return enc.Close()
	}
	return errors.Newf("unsupported output: %s (supported: json, yaml)", format)
}
