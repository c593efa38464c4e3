package consts

// Colors
const (
	ColorReset = "\033[0m"
	ColorCyan  = "\033[96m"
)
