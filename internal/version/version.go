package version

// Version is the application version, surfaced by /api/health and -version flags.
const Version = "0.3.0"

// Name is the application name used in logs and CLI usage text.
const Name = "lyrsync"
