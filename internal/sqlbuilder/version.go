package sqlbuilder

import "fmt"

const versionTable = `"_schema_version_"`

// VersionSetup returns the statements preparing schema version
// bookkeeping.
func (d Dialect) VersionSetup() []string {
	if !d.versionTable {
		return nil
	}
	return []string{`CREATE TABLE IF NOT EXISTS ` + versionTable + ` (version INTEGER NOT NULL)`}
}

// VersionQuery returns the query reading the stored schema version as a
// single integer. A fresh database reads 0.
func (d Dialect) VersionQuery() string {
	if !d.versionTable {
		return "PRAGMA user_version"
	}
	return `SELECT COALESCE(MAX(version), 0) FROM ` + versionTable
}

// VersionUpdate returns the statements recording version.
func (d Dialect) VersionUpdate(version int) []string {
	if !d.versionTable {
		return []string{fmt.Sprintf("PRAGMA user_version = %d", version)}
	}
	return []string{
		`DELETE FROM ` + versionTable,
		fmt.Sprintf(`INSERT INTO `+versionTable+` (version) VALUES (%d)`, version),
	}
}
