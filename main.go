package main

import (
	"context"
	"os"

	"github.com/llehouerou/segue/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
