// Package files discovers datasets and report artifacts on disk: raw
// inputs, dated cleaned exports, and generated reports. It also guards
// artifact downloads against path traversal.
package files
