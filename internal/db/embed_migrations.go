package db

import "embed"

// MigrationFS holds the schema for users, workspaces, memberships, projects, tasks and the audit log.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
