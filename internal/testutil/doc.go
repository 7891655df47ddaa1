// Package testutil provides in-memory fakes of the capabilities declared in
// internal/ports, so resolution and update logic can be tested without
// network or process access.
package testutil
