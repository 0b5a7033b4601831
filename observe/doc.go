// Package observe provides the telemetry used by tracker health checks:
// a structured JSON logger, OpenTelemetry spans for each check and each
// tracker scrape, and counters and histograms for both.
//
// Consumers build one Observer from Config and hand it to the health checker
// and the HTTP server. Middleware wraps any scrape.Scraper so every tracker
// query gets a span, metrics and a log line without the scraper knowing.
package observe
