package consts

// Recommended permissions for different types of files and directories the archiver might create.
const (
	// Media directories - world readable
	PermsGenericDir = 0o755

	// Media and metadata files - world readable
	PermsJSONFile  = 0o644
	PermsStatsFile = 0o644

	// Sensitive files - owner only
	PermsHomeProgDir = 0o750
	PermsCookieFile  = 0o600
)
