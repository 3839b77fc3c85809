package main

import (
	"fmt"

	"github.com/trezcool/gradebook/core/user"
)

// hashPassword prints the hash stored for pwd.
func (cli *commandLine) hashPassword(pwd string) error {
	var usr user.User
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, string(usr.PasswordHash))
	return nil
}
