/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/savoria-catering/apiserver/cmd"

func main() {
	cmd.Execute()
}
