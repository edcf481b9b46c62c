package main

import (
	"transfer-service/app"
)

func main() {
	app.Run()
}
