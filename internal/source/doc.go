// Package source harvests candidate relay endpoints from public proxy
// list sources. Each source is fetched by a Collector matching its wire
// format (plain text, JSON API, HTML table), and the Harvester merges
// every collector's output into one deduplicated candidate set.
package source
