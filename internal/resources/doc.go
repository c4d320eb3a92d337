// Package resources holds one configurator per provider service.  Each configurator
// wraps a narrow client interface and issues idempotent "ensure setting X" calls,
// swallowing the provider responses that mean the setting is already in place.
package resources
