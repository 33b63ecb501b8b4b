package main

import "github.com/locotek/presskit/services/presskit-service/internal/app"

func main() {
	app.Execute()
}
