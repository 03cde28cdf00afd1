/*
Package runlock serializes work on the same run across goroutines and,
optionally, across replicas.

A Manager keeps one reference-counted lock per key. Entries are dropped as
soon as the last holder releases them, so memory stays bounded by the number
of runs currently being built. When a ports.DistributedLocker is configured
the local lock is taken first and the distributed one second, so a replica
only ever has a single goroutine contending on the shared backend per run.
*/
package runlock
