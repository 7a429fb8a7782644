package security

import (
	"sort"
	"strings"
)

// Redactor masks known secret values (API keys and the like) in any string
// that passes through the log router.
type Redactor struct {
	Secrets []string
}

func NewRedactor(secrets ...string) *Redactor {
	var values []string
	for _, s := range secrets {
		if s != "" {
			values = append(values, s)
		}
	}
	return &Redactor{Secrets: values}
}

func (r *Redactor) Redact(s string) string {
	if r == nil || len(r.Secrets) == 0 {
		return s
	}

	// Replace longer secrets first so a secret that is a substring of
	// another cannot leave a partial value behind.
	secrets := make([]string, len(r.Secrets))
	copy(secrets, r.Secrets)
	sort.Slice(secrets, func(i, j int) bool {
		return len(secrets[i]) > len(secrets[j])
	})

	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, "********")
	}
	return s
}
