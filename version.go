package logtree

// Version is the release of the module, overridden at link time with
// -ldflags "-X github.com/ts-factory/bublik-logtree.Version=...".
var Version = "0.4.0-dev"
