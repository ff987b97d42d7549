/*
Package observability turns wizard lifecycle hooks into metrics and audit logs.

Metrics registers Prometheus collectors for completion attempts, retries and
session transitions. LoggingHooks writes an audit line per transition. Both
return domain.LifecycleHooks that can be combined with domain.MergeHooks.
*/
package observability
