// Package services implements the business logic behind the dashboard
// HTTP handlers: dataset snapshots with filtering and KPIs, report
// artifact inventory and download resolution, and process health.
//
// Services follow a common shape: a constructor taking the resolved
// directory layout and an injected *slog.Logger, context propagation on
// every operation, and errors from the shared taxonomy so transport can
// map them to status codes. Handlers stay thin; anything worth testing
// lives here.
//
// DashboardService holds the one piece of shared mutable state in the
// web process, the dataset snapshot. It is guarded by an RWMutex solely
// for the reload endpoint; request handlers only ever read a snapshot.
package services
