package main

import "github.com/ValentinKolb/xPeer/cmd"

func main() {
	cmd.Execute()
}
