package main

import "fmt"

type versionCmd struct{ r *root }

func (v *versionCmd) Run() error {
	line := fmt.Sprintf("%s version %s", v.r.Program(), version)
	if commit != "" {
		line += " (" + commit + ")"
	}
	if date != "" {
		line += " built " + date
	}
	fmt.Println(line)
	return nil
}
