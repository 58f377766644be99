// Command watchlist runs the movie watchlist web app and its bootstrap
// commands. See internal/cli for the command tree.
package main

import (
	"os"

	"github.com/sakif/watchlist/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// cobra has already printed the error.
		os.Exit(1)
	}
}
