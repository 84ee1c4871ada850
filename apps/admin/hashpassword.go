package main

import (
	"fmt"

	"github.com/trezcool/mahudhurio/core/operator"
)

func (cli *commandLine) hashPassword(pwd string) error {
	hash, err := operator.HashPassword(pwd)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
