/*
Package logtree turns raw Bublik log-tree responses into client-ready trees.

A Bublik server returns the log tree of a test run as a nested JSON document
rooted at "main_package", with snake_case keys and server-assigned integer
identifiers. Rendering that document directly is awkward: every consumer has
to rename keys, find parents, and skip the long chains of single-child
packages that test suites tend to produce. This module does that work once,
on the server side, and hands out a flat tree that is cheap to render and to
deep-link into.

# Pipeline

The pipeline lives in pkg/tree and runs five pure stages over each payload:

  - Key normalization: snake_case keys become camelCase, recursively.
  - Decoding: nodes are checked and typed (package, session, test, iteration).
    Malformed subtrees are skipped and reported as issues.
  - Parent annotation: the tree is flattened into an arena and every node
    records its parent identifier.
  - Chain compression: runs of single-child containers collapse into one node
    labeled "a/b/c", keeping the deepest identifier.
  - Path annotation: every node gets the root-to-self identifier sequence.

# Service

Service wraps the pipeline with a source (the Bublik API, a directory of
fixtures, or memory), an optional cache (memory, file, or Redis), and per-run
locking so concurrent requests build a run only once.

	package main

	import (
		"context"
		"log"

		"github.com/ts-factory/bublik-logtree"
		"github.com/ts-factory/bublik-logtree/pkg/adapters/bublik"
		"github.com/ts-factory/bublik-logtree/pkg/adapters/memory"
	)

	func main() {
		source, err := bublik.New("https://ts-factory.io/bublik")
		if err != nil {
			log.Fatal(err)
		}
		cache, err := memory.NewCache(128)
		if err != nil {
			log.Fatal(err)
		}

		svc, err := logtree.New(source, logtree.WithCache(cache))
		if err != nil {
			log.Fatal(err)
		}

		tree, err := svc.Tree(context.Background(), 1234)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("run 1234: %d nodes", tree.Len())
	}

The same Service backs the HTTP API (pkg/adapters/http), the MCP tools
(pkg/adapters/mcp) and the logtree CLI (cmd/logtree).
*/
package logtree
