package main

import "feedgram/service"

func main() {
	service.Execute()
}
