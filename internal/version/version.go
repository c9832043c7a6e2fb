// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Terminal preview with moon disk and twilight panel, Horizons tables
// 0.2.0 - HTTP server with rate limiting and Prometheus metrics, TLE refresh loop
// 0.1.0 - Initial release: sky map, moon symbol and analemma SVG renderers
