package github

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/tutorforge/internal/core/domain"
)

// Source identifies a file in a GitHub repository.
type Source struct {
	Owner string
	Repo  string
	Path  string
	Ref   string
}

// ParseSource parses a "github:owner/repo[/path][@ref]" source string.
func ParseSource(source string) (Source, error) {
	s := strings.TrimSpace(source)
	if !strings.HasPrefix(s, domain.GitHubSourcePrefix) {
		return Source{}, fmt.Errorf("%w: %q", ErrInvalidSource, source)
	}
	s = strings.TrimPrefix(s, domain.GitHubSourcePrefix)

	var ref string
	if i := strings.LastIndex(s, "@"); i >= 0 {
		s, ref = s[:i], s[i+1:]
		if ref == "" {
			return Source{}, fmt.Errorf("%w: empty ref in %q", ErrInvalidSource, source)
		}
	}

	parts := strings.SplitN(strings.Trim(s, "/"), "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Source{}, fmt.Errorf("%w: expected owner/repo in %q", ErrInvalidSource, source)
	}

	src := Source{Owner: parts[0], Repo: parts[1], Ref: ref}
	if len(parts) == 3 {
		src.Path = strings.Trim(parts[2], "/")
	}
	return src, nil
}

// String formats the source back into its canonical form.
func (s Source) String() string {
	out := domain.GitHubSourcePrefix + s.Owner + "/" + s.Repo
	if s.Path != "" {
		out += "/" + s.Path
	}
	if s.Ref != "" {
		out += "@" + s.Ref
	}
	return out
}

// HTMLURL returns the github.com page for the source.
func (s Source) HTMLURL() string {
	ref := s.Ref
	if ref == "" {
		ref = "HEAD"
	}
	if s.Path == "" {
		return fmt.Sprintf("https://github.com/%s/%s", s.Owner, s.Repo)
	}
	return fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s", s.Owner, s.Repo, ref, s.Path)
}
