package main

import "github.com/dfworx/auth-service/internal/cli/cmd"

func main() {
	cmd.Execute()
}
