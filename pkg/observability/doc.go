/*
Package observability provides tools for monitoring the Tinct engine.

It includes lifecycle hooks fired around parsing and rendering, and a
Prometheus collector set that turns those hooks into metrics.
*/
package observability
