package main

import "github.com/oshokin/chatgpt-extension-packager/cmd/extension-packager/cmd"

func main() {
	cmd.Execute()
}
