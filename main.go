package main

import "backoffice/internal/app"

func main() {
	app.Main()
}
