package main

import "github.com/ferncreek/daytrace/cmd/dtctl/arg"

func main() {
	arg.Execute()
}
