// Package http implements HTTP request handlers for the dashboard web service.
// It provides a thin layer between HTTP transport and business logic, keeping
// handlers focused solely on HTTP concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - all logic belongs in the service layer
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Dataset Snapshot
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Handlers
//
// DashboardHandler serves KPI summaries, automated insights, production time
// series, and field names over the shared field/from/to filter, plus the
// server-rendered chart page. DataHandler lists generated report artifacts and
// streams downloads with path containment checks. HealthHandler exposes
// health, liveness, readiness, and version endpoints.
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details specification:
//
//	{
//	    "type": "validation_error",
//	    "title": "Invalid Request",
//	    "status": 400,
//	    "detail": "invalid from date \"03/01/2024\", expected 2006-01-02",
//	    "instance": "/api/dashboard/summary"
//	}
//
// # Testing
//
// Handlers are tested using httptest against real services backed by
// temporary dataset fixtures.
package http
