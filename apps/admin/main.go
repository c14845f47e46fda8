package main

import (
	"log"
	"os"

	"github.com/incluso/backend/core"
	"github.com/incluso/backend/core/user"
	localstore "github.com/incluso/backend/storage/local"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up the local record store
	db, err := localstore.Open(core.Conf.DataDir)
	errAndDie(err)

	cli := commandLine{
		db:     db,
		usrSvc: user.NewService(localstore.NewUserRepository(db)),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
