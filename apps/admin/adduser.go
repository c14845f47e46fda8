package main

import (
	"github.com/incluso/backend/core/user"
)

// addUser registers a new local user with the given role and password.
func (cli *commandLine) addUser(name, email, role, pwd string) error {
	_, err := cli.usrSvc.Create(user.NewUser{
		Name:     name,
		Email:    email,
		Role:     role,
		Password: pwd,
	})
	return err
}
