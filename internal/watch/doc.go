// Package watch re-triggers the ordering pipeline when workspace manifest
// files (go.mod, go.sum, go.work, go.work.sum) change. It backs the --watch
// flag, which is restricted to the print path; re-running arbitrary exec
// commands on every editor save would be a footgun.
package watch
