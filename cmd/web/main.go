package main

import "fls_backend/internal/app"

func main() {
	app.Run()
}
