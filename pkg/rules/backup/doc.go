// Package backup snapshots the rule document on a cron schedule and
// prunes snapshots beyond a retention count.
//
// Backups exist because the repository persists by full rewrite: a bad
// mutation or an out-of-band edit replaces the whole document, and a
// recent snapshot is the only way back.
package backup
