// Package api contains the HTTP trigger surfaces of the dispatch pipeline:
// task creation, manual runs, the scheduled batch endpoint, task/log reads,
// and the health check. Handlers translate between wire DTOs and the
// service/dispatch layers and never leak internal error details to clients.
package api
