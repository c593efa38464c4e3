// Package logger holds the program logger.
package logger

import "tubarchive/internal/utils/logging"

// Pl holds the global *ProgramLogger variable.
var Pl = logging.Discard()
