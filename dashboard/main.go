package main

import (
	"fmt"

	"github.com/yaron8/netwatch/dashboard/bootstrap"
)

func main() {
	bootstrap, err := bootstrap.NewBootstrap()
	if err != nil {
		panic(fmt.Sprintf("Failed to create dashboard bootstrap: %v", err))
	}

	if err := bootstrap.Start(); err != nil {
		panic(fmt.Sprintf("Failed to start dashboard: %v", err))
	}
}
