// Command ggstudio renders, exports and serves design documents.
package main

import (
	"context"
	"os"

	"github.com/gogpu/studio/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
