package main

import "github.com/masmgr/hglineage/cmd"

func main() {
	cmd.Run()
}
