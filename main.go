package main

import "github.com/frahmantamala/ad-management/cmd"

func main() {
	cmd.Execute()
}
