package domain

// DefaultWorkerRole is the role label used when a worker profile is missing
// or carries no role.
const DefaultWorkerRole = "Assistant"

// WorkerProfile describes a named worker persona. Worker lifecycle is owned
// outside this service; profiles are read-only here.
type WorkerProfile struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Role     string   `json:"role"`
	Keywords []string `json:"keywords,omitempty"`
}

// RoleOrDefault returns the worker's role, falling back to the default
// label when unset.
func (w *WorkerProfile) RoleOrDefault() string {
	if w == nil || w.Role == "" {
		return DefaultWorkerRole
	}
	return w.Role
}
