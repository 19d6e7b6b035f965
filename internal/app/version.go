package app

import (
	"fmt"
	"io"
	"runtime"
)

// Version is the application version, set at build time with
// -ldflags "-X github.com/agbru/glmeal/internal/app.Version=v1.2.3".
var Version = "dev"

// HasVersionFlag reports whether args ask for the version. It is checked
// before flag parsing so it works alongside otherwise invalid flags.
func HasVersionFlag(args []string) bool {
	for _, a := range args {
		switch a {
		case "-version", "--version", "-V":
			return true
		}
	}
	return false
}

// PrintVersion writes the version banner.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "glmeal %s (%s %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
