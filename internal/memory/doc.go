// Package memory sets GOMEMLIMIT from the container memory limit so
// large indexing runs and inline image payloads stay inside the
// cgroup budget.
package memory
