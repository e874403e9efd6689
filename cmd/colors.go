package cmd

import (
	"github.com/fatih/color"
)

var colorError = color.New(color.FgRed).SprintFunc()
