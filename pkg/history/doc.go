// Package history fetches the build history of container images.
//
// A [Provider] returns the history of one image reference as
// [layer.Record] values, oldest build step first. Three providers are
// available:
//
//   - [DaemonProvider]: a local Docker engine (ImageHistory API)
//   - [RegistryProvider]: a remote OCI/Docker registry, read through
//     go-containerregistry with the default credential keychain
//   - [ArchiveProvider]: a "docker save" tarball on disk
//
// [CachedProvider] wraps any provider and stores fetched histories in a
// [cache.Cache].
//
// # Layer ids
//
// The daemon reports its own image ids, with "<missing>" for steps whose
// image was not pulled. Registries and archives carry no per-step ids, so
// the remaining providers derive the OCI chain id of the layer stack below
// each filesystem-changing step, and use [layer.MissingID] for metadata-only
// steps (ENV, CMD, LABEL, ...). Chain ids are equal exactly when the layer
// stacks are equal, which is what layer identity needs.
//
// # Tag listing
//
// Providers that can enumerate tags also implement [TagLister]; the CLI
// uses it for interactive tag selection.
package history
