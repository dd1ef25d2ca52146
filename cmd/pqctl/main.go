// Command pqctl generates ML-KEM and ML-DSA keys and uses them to
// encapsulate shared secrets and to sign and verify files.
package main

import (
	"context"
	"os"

	"github.com/carlmjohnson/versioninfo"
	"github.com/charmbracelet/fang"
)

func main() {
	rootCmd := newRootCommand()

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(versioninfo.Short()),
	); err != nil {
		os.Exit(1)
	}
}
