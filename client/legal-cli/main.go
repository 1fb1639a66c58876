package main

import "github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/client/legal-cli/cmd"

func main() {
	cmd.Execute()
}
