/*
Package domain contains the core models of the log-tree pipeline.

It defines the typed records that flow between the pipeline stages, the
explicit node kind tag carried from the API boundary inward, and the sentinel
errors shared by adapters. This package is kept pure and free of I/O.

# Key Entities

  - Kind: Tags a node as a container (package, session) or a result leaf (test, iteration).
  - RawNode: A decoded API node with its children in server document order.
  - Tree: An arena of Nodes addressed by integer index, annotated with parents and paths.
  - PathedNode: The nested shape handed to tree-rendering consumers.
  - PipelineHooks: Callbacks observing each pipeline stage.
*/
package domain
