package main

import (
	"log"
	"os"

	echoapi "github.com/incluso/backend/api/echo"
	"github.com/incluso/backend/core"
	"github.com/incluso/backend/core/school"
	"github.com/incluso/backend/core/user"
	emailsvc "github.com/incluso/backend/services/email"
	logsvc "github.com/incluso/backend/services/logger"
	remotesvc "github.com/incluso/backend/services/remote"
	localstore "github.com/incluso/backend/storage/local"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, core.Conf)
	logger.Enable(!core.Conf.Debug)

	// set up the local record store
	db, err := localstore.Open(core.Conf.DataDir)
	errAndDie(std, err)
	errAndDie(std, db.EnsureSeed())

	usrRepo := localstore.NewUserRepository(db)
	schoolRepo := localstore.NewSchoolRepository(db)
	sessions := localstore.NewSessionStore(db)

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	remote := remotesvc.NewClient(core.Conf)

	usrSvc := user.NewService(usrRepo)
	auth := user.NewAuthenticator(sessions, logger, user.DefaultStrategies(remote, usrSvc)...)
	schoolSvc := school.NewService(schoolRepo, remote, mailSvc, logger)

	// start the API server
	app := echoapi.NewServer(&echoapi.Options{
		Address:   core.Conf.ServerAddr,
		Auth:      auth,
		Sessions:  sessions,
		SchoolSvc: schoolSvc,
		Logger:    logger,
	})
	app.Start()
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
