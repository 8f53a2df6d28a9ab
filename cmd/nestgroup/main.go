// Package main provides a CLI for inspecting nested table groupings.
//
// The CLI supports:
//   - validate: Load a definition file and list its tables and groups
//   - keys: Derive composite keys and titles for records from a YAML file
//   - sql: Print the grouping, ordering or scoped SQL for a group
//   - groups: Count the groups of a table in a PostgreSQL database
//   - rows: Fetch the rows of one group from a PostgreSQL database
//
// Usage:
//
//	nestgroup [flags] <command>
//
// Commands that require database access (groups, rows) need --db or
// database settings in nestgroup.yaml. The rest only read files.
package main

func main() {
	Execute()
}
