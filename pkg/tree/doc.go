// Package tree turns raw Bublik log-tree payloads into client-ready trees.
//
// The pipeline is a sequence of pure stages:
//
//	payload -> NormalizeKeys -> Decode -> AnnotateParents -> Compress -> AnnotatePaths
//
// Every stage returns a new value and leaves its input untouched, so results
// can be cached and shared between goroutines. Build runs the whole pipeline.
//
// Trees are stored as flat arenas (domain.Tree) addressed by integer index;
// all traversals use explicit stacks instead of recursion.
package tree
