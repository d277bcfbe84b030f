package targets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/statuspage/internal/domain"
)

var ErrDuplicateID = errors.New("duplicate service id")

var validate = validator.New(validator.WithRequiredStructEnabled())

type file struct {
	Services []domain.Target `yaml:"services"`
}

// LoadFile reads and validates the services file at path.
func LoadFile(path string) ([]domain.Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open services file: %w", err)
	}
	defer f.Close()

	ts, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ts, nil
}

// Problems splits an error from LoadFile or Parse into one error per
// offending entry, looking through any wrapping.
func Problems(err error) []error {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}

// Parse decodes a services document. Any malformed entry rejects the whole
// document; the returned error lists every offending entry.
func Parse(r io.Reader) ([]domain.Target, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc file
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode services: %w", err)
	}

	out := make([]domain.Target, 0, len(doc.Services))
	seen := make(map[string]int, len(doc.Services))
	var errs error
	for i, t := range doc.Services {
		t.ID = strings.TrimSpace(t.ID)
		t.Name = strings.TrimSpace(t.Name)
		t.URL = strings.TrimSpace(t.URL)

		if err := validate.Struct(t); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("services[%d]: %s", i, describe(err)))
			continue
		}
		if j, ok := seen[t.ID]; ok {
			errs = multierr.Append(errs, fmt.Errorf("services[%d]: %w %q (first at services[%d])", i, ErrDuplicateID, t.ID, j))
			continue
		}
		seen[t.ID] = i
		out = append(out, t)
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

func describe(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "http_url":
			parts = append(parts, field+" must be an http(s) URL")
		default:
			parts = append(parts, field+" failed "+fe.Tag())
		}
	}
	return strings.Join(parts, ", ")
}
