/*
Package ports defines the driven ports (interfaces) of the log-tree service.

These interfaces decouple the pipeline from external implementations, allowing
the service to work with various upstream sources, cache backends and lock
providers.

# Key Interfaces

  - TreeSource: Retrieves raw log-tree payloads for a run (Bublik API, files, memory).
  - TreeCache: Stores built trees per run (memory, file, Redis).
  - DistributedLocker: Coordinates builds of the same run across replicas.
*/
package ports
