// Package staging maintains the per-topic project directories under the
// work directory: listing them with their size and removing stale or
// orphaned ones. Directories of topics still pending or processing are never
// removed, so an interrupted topic can resume from its intermediates.
package staging
