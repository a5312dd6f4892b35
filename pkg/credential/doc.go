// Package credential obtains and caches the bearer tokens the proxy attaches
// to upstream Azure OpenAI calls.
//
// A Source fetches a fresh token for a scope. AzureSource wraps the
// DefaultAzureCredential chain (managed identity, workload identity,
// environment service principal, Azure CLI); StaticSource serves a fixed
// token for local development.
//
// CachingProvider sits in front of a Source. It hands out the cached token
// until it is within RefreshMargin of expiry, collapses concurrent refreshes
// into a single Source call, and never returns an expired token. Refresher
// can pre-warm the cache on a cron schedule so request paths rarely wait on
// token acquisition.
package credential
