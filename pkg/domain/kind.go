package domain

import "strings"

// Kind tags a log-tree node.
type Kind string

const (
	// KindPackage groups sessions and tests. Bublik reports it as "pkg".
	KindPackage Kind = "package"
	// KindSession groups tests inside a package.
	KindSession Kind = "session"
	// KindTest carries a test verdict.
	KindTest Kind = "test"
	// KindIteration carries the verdict of a single test iteration.
	KindIteration Kind = "iteration"
)

// ParseKind maps an API "type" value onto a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pkg", "package":
		return KindPackage, true
	case "session":
		return KindSession, true
	case "test":
		return KindTest, true
	case "iter", "iteration":
		return KindIteration, true
	}
	return "", false
}

// IsContainer reports whether nodes of this kind only group other nodes.
func (k Kind) IsContainer() bool {
	return k == KindPackage || k == KindSession
}

// IsLeaf reports whether nodes of this kind carry results.
func (k Kind) IsLeaf() bool {
	return k == KindTest || k == KindIteration
}

func (k Kind) String() string { return string(k) }
