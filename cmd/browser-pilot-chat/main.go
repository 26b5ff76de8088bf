package main

import (
	"browser-pilot/internal/bootstrap"
)

func main() {
	bootstrap.NewChatApp().Run()
}
