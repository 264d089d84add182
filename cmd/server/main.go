package main

import "bananaprep/internal/server"

func main() {
	server.StartGinServer()
}
