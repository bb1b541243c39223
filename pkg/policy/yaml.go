package policy

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cyberarian/rekama-sys/pkg/model"
)

// Statement is a marker interface for document statements.
type Statement interface {
	Kind() Kind
}

// PolicyStatement declares a policy.
type PolicyStatement struct {
	ID          string `yaml:"id,omitempty"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Content     string `yaml:"content,omitempty"`
}

func (PolicyStatement) Kind() Kind { return KindPolicy }

func (p PolicyStatement) Policy() model.Policy {
	return model.Policy{ID: p.ID, Name: p.Name, Description: p.Description, Content: p.Content}
}

// ScheduleStatement declares a retention schedule.
type ScheduleStatement struct {
	ID             string        `yaml:"id,omitempty"`
	Code           string        `yaml:"code"`
	Name           string        `yaml:"name"`
	Description    string        `yaml:"description,omitempty"`
	RetentionYears int           `yaml:"retention_years"`
	Trigger        model.Trigger `yaml:"trigger"`
}

func (ScheduleStatement) Kind() Kind { return KindSchedule }

func (s ScheduleStatement) Schedule() model.RetentionSchedule {
	return model.RetentionSchedule{
		ID:             s.ID,
		Code:           s.Code,
		Name:           s.Name,
		Description:    s.Description,
		RetentionYears: s.RetentionYears,
		Trigger:        s.Trigger,
	}
}

// Statements is an ordered list of tagged statements.
type Statements []Statement

func (s *Statements) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: policy document must be a list of statements", value.Line)
	}

	var statements Statements
	for _, node := range value.Content {
		kind, err := kindFromTag(node.Tag)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}

		var statement Statement
		switch kind {
		case KindPolicy:
			var p PolicyStatement
			if err := node.Decode(&p); err != nil {
				return err
			}
			statement = p
		case KindSchedule:
			var sch ScheduleStatement
			if err := node.Decode(&sch); err != nil {
				return err
			}
			statement = sch
		}
		statements = append(statements, statement)
	}

	*s = statements
	return nil
}

func (s Statements) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode}
	for _, statement := range s {
		item := &yaml.Node{}
		if err := item.Encode(statement); err != nil {
			return nil, err
		}
		item.Tag = statement.Kind().Tag()
		item.Style = yaml.TaggedStyle
		node.Content = append(node.Content, item)
	}
	return node, nil
}

// ParseYAML reads a YAML policy document.
func ParseYAML(r io.Reader) (Statements, error) {
	var statements Statements
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&statements); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	return statements, nil
}

func (s Statements) validate() error {
	var problems []string
	for i, statement := range s {
		switch st := statement.(type) {
		case PolicyStatement:
			if strings.TrimSpace(st.Name) == "" {
				problems = append(problems, fmt.Sprintf("statement %d: policy needs a name", i+1))
			}
		case ScheduleStatement:
			if st.Code == "" {
				problems = append(problems, fmt.Sprintf("statement %d: schedule needs a code", i+1))
			}
			if st.RetentionYears <= 0 {
				problems = append(problems, fmt.Sprintf("statement %d: schedule %s needs positive retention_years", i+1, st.Code))
			}
			if !st.Trigger.Valid() {
				problems = append(problems, fmt.Sprintf("statement %d: schedule %s has unknown trigger %q", i+1, st.Code, st.Trigger))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid policy document: %s", strings.Join(problems, "; "))
	}
	return nil
}
