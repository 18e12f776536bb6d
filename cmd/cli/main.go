package main

import (
	"context"
	"flag"

	"github.com/dkarpovs/minifeed/internal/client/cli"
)

func main() {

	server := flag.String("server", "http://localhost:8080", "feed server base URL")
	flag.Parse()

	app := cli.NewApp(*server)
	app.Run(context.Background())
}
