package policy

import "fmt"

// Kind names a statement in a YAML policy document.
type Kind string

const (
	KindPolicy   Kind = "policy"
	KindSchedule Kind = "schedule"
)

func (k Kind) Tag() string {
	return "!" + string(k)
}

func kindFromTag(tag string) (Kind, error) {
	switch tag {
	case KindPolicy.Tag():
		return KindPolicy, nil
	case KindSchedule.Tag():
		return KindSchedule, nil
	}
	return "", fmt.Errorf("unknown statement tag %q", tag)
}
