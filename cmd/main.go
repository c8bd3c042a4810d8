package main

import (
	"github.com/corray333/marketsync/internal/app"
	"github.com/corray333/marketsync/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
