package yahoo

import (
	"fmt"
	"os"
)

// envDebugFlag reads the single environment-variable-controlled debug flag
// (spec §6.3: "name irrelevant; semantics: print refresh and fallback
// decisions to stderr"). Named YF_DEBUG for parity with the original
// source's own env var.
func envDebugFlag() string {
	return os.Getenv("YF_DEBUG")
}

func debugLog(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "YF_DEBUG: "+format+"\n", args...)
}
