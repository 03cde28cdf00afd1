/*
Package observability exposes the tree pipeline to monitoring.

Metrics registers Prometheus collectors on a private registry and adapts them
onto domain.PipelineHooks; LogHooks does the same for structured logs. Both
can be combined with PipelineHooks.Merge and passed to logtree.WithHooks.
*/
package observability
