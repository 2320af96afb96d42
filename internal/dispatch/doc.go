// Package dispatch moves tasks through their lifecycle: discovering eligible
// pending work, winning the storage-level lock, running the worker's
// language-model call, and writing terminal state plus audit log entries.
//
// One Dispatcher serves all three trigger surfaces (continuous polling, an
// externally scheduled batch, and manual single-task runs). Coordination
// between concurrent dispatcher instances happens exclusively through the
// store's atomic conditional update; losing that race is a normal outcome
// and is skipped silently.
package dispatch
