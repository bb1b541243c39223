package policy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cyberarian/rekama-sys/pkg/governance"
	"github.com/cyberarian/rekama-sys/pkg/identity"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

// ErrUnsupportedFormat is returned for files that are neither Markdown nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported policy document format")

// LoadResult describes what a load changed.
type LoadResult struct {
	Policies  []string `json:"policies"`
	Schedules []string `json:"schedules"`
	// Unchanged lists schedule codes that already existed.
	Unchanged []string `json:"unchanged,omitempty"`
}

// Loader applies policy documents through the governance service, so every
// change is authorized and audited as the loading identity.
type Loader struct {
	svc    *governance.Service
	caller *identity.Identity
	logger *slog.Logger
}

func NewLoader(svc *governance.Service, caller *identity.Identity) *Loader {
	return &Loader{svc: svc, caller: caller, logger: slog.Default()}
}

// WithLogger sets the logger
func (l *Loader) WithLogger(logger *slog.Logger) *Loader {
	l.logger = logger
	return l
}

// Parse reads a document, choosing the format from the file name.
func Parse(name string, r io.Reader) (Statements, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		p, err := ParseMarkdown(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return Statements{p}, nil
	case ".yml", ".yaml":
		statements, err := ParseYAML(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return statements, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

// LoadFile parses and applies one document.
func (l *Loader) LoadFile(ctx context.Context, path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open policy file: %w", err)
	}
	defer func() { _ = f.Close() }()

	statements, err := Parse(path, f)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, statements)
}

// Load validates every statement before applying any of them.
func (l *Loader) Load(ctx context.Context, statements Statements) (*LoadResult, error) {
	if err := statements.validate(); err != nil {
		return nil, err
	}

	known := make(map[string]struct{})
	for _, sch := range l.svc.Schedules() {
		known[sch.Code] = struct{}{}
	}

	result := &LoadResult{}
	for _, statement := range statements {
		switch st := statement.(type) {
		case PolicyStatement:
			p, err := l.svc.SavePolicy(ctx, l.caller, st.Policy())
			if err != nil {
				return result, fmt.Errorf("policy %q: %w", st.Name, err)
			}
			result.Policies = append(result.Policies, p.ID)
		case ScheduleStatement:
			if _, ok := known[st.Code]; ok {
				result.Unchanged = append(result.Unchanged, st.Code)
				continue
			}
			sch, err := l.svc.CreateSchedule(ctx, l.caller, st.Schedule())
			if err != nil && !errors.Is(err, store.ErrDuplicateKey) {
				return result, fmt.Errorf("schedule %q: %w", st.Code, err)
			}
			if err != nil {
				result.Unchanged = append(result.Unchanged, st.Code)
				continue
			}
			known[sch.Code] = struct{}{}
			result.Schedules = append(result.Schedules, sch.ID)
		}
	}

	l.logger.Info("policy document loaded",
		"policies", len(result.Policies),
		"schedules", len(result.Schedules),
		"unchanged", len(result.Unchanged),
	)
	return result, nil
}
